// Package updateplan реализует HTTP-обработчик частичного обновления плана.
package updateplan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/lib/validate"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает PUT /api/admin/plans/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает обновление плана.
type Service interface {
	UpdatePlan(ctx context.Context, planID string, upd models.PlanUpdate) (*models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validate.New()}
}

type planResponse struct {
	Plan *models.Plan `json:"plan"`
}

// ServeHTTP godoc
// @Summary Обновить план
// @Description Меняет только переданные поля плана.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "UUID плана"
// @Param request body models.PlanUpdate true "Изменяемые поля"
// @Success 200 {object} planResponse
// @Failure 400 {object} response.ErrorResponse "Некорректные поля или каталог не создан"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Нет роли admin"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /admin/plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updateplan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var upd models.PlanUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request", sl.Err(err))
		response.Fail(w, r, apperr.New(apperr.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := h.validate.Struct(upd); err != nil {
		response.Fail(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, planResponse{Plan: plan})
}
