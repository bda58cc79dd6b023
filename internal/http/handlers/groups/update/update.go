// Package update реализует HTTP-обработчик переименования группы.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/lib/validate"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает PUT /api/groups/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает переименование группы.
type Service interface {
	Rename(ctx context.Context, userID, groupID, name string) (*models.WordGroup, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validate.New()}
}

type groupResponse struct {
	Group *models.WordGroup `json:"group"`
}

// ServeHTTP godoc
// @Summary Переименовать группу
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "UUID группы"
// @Param request body models.GroupRequest true "Новое название"
// @Success 200 {object} groupResponse
// @Failure 400 {object} response.ErrorResponse "Нет названия или группы не настроены"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Группы недоступны в плане"
// @Failure 404 {object} response.ErrorResponse "Группа не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /groups/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.groups.update"
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

	var req models.GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request", sl.Err(err))
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	group, err := h.service.Rename(r.Context(), userID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		log.Error("failed to rename group", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, groupResponse{Group: group})
}
