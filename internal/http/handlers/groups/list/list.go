// Package list реализует HTTP-обработчик списка групп пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, userID string) ([]models.WordGroup, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type groupsResponse struct {
	Groups []models.WordGroup `json:"groups"`
}

// ServeHTTP godoc
// @Summary Список групп
// @Description Возвращает группы пользователя, новые первыми. План не проверяется.
// @Tags Groups
// @Produce json
// @Success 200 {object} groupsResponse
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /groups [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.groups.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id not found in context")
		response.Fail(w, r, apperr.New(apperr.CodeUnauthorized, "Missing Bearer token"))
		return
	}

	groups, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list groups", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.WordGroup{}
	}

	response.OK(w, r, groupsResponse{Groups: groups})
}
