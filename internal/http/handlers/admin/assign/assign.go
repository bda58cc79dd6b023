// Package assign реализует HTTP-обработчик назначения плана пользователю.
package assign

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает POST /api/admin/user-plans.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает назначение плана.
type Service interface {
	AssignPlan(ctx context.Context, req models.AssignPlanRequest) (*models.UserPlanAssignment, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type userPlanResponse struct {
	UserPlan *models.UserPlanAssignment `json:"user_plan"`
}

// ServeHTTP godoc
// @Summary Назначить план
// @Description Назначает пользователю план, заменяя предыдущее назначение. expires_at в формате RFC 3339.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.AssignPlanRequest true "Пользователь, план и срок"
// @Success 200 {object} userPlanResponse
// @Failure 400 {object} response.ErrorResponse "Нет user_id или plan_id"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Нет роли admin"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /admin/user-plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.assign"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AssignPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request", sl.Err(err))
		response.Fail(w, r, apperr.New(apperr.CodeInvalidRequest, "invalid request body"))
		return
	}

	a, err := h.service.AssignPlan(r.Context(), req)
	if err != nil {
		log.Error("failed to assign plan", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, userPlanResponse{UserPlan: a})
}
