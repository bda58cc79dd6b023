// Package remove реализует HTTP-обработчик удаления группы.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
)

// Handler обрабатывает DELETE /api/groups/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление группы.
type Service interface {
	Delete(ctx context.Context, userID, groupID string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type successResponse struct {
	Success bool `json:"success"`
}

// ServeHTTP godoc
// @Summary Удалить группу
// @Description Удаляет группу. Слова группы остаются в словаре без группы.
// @Tags Groups
// @Produce json
// @Param id path string true "UUID группы"
// @Success 200 {object} successResponse
// @Failure 400 {object} response.ErrorResponse "Группы не настроены"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Группы недоступны в плане"
// @Failure 404 {object} response.ErrorResponse "Группа не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /groups/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.groups.remove"
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

	groupID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), userID, groupID); err != nil {
		log.Error("failed to delete group", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("group deleted", slog.String("group_id", groupID))
	response.OK(w, r, successResponse{Success: true})
}
