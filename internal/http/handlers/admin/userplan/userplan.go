// Package userplan реализует HTTP-обработчик чтения назначения плана пользователя.
package userplan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает GET /api/admin/user-plans/{user_id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение назначения.
type Service interface {
	GetUserPlan(ctx context.Context, userID string) (*models.UserPlanAssignment, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type userPlanResponse struct {
	UserPlan *models.UserPlanAssignment `json:"user_plan"`
}

// ServeHTTP godoc
// @Summary Назначение плана пользователя
// @Description Возвращает назначение или null, если его нет.
// @Tags Admin
// @Produce json
// @Param user_id path string true "UUID пользователя"
// @Success 200 {object} userPlanResponse
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Нет роли admin"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /admin/user-plans/{user_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userplan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	a, err := h.service.GetUserPlan(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		log.Error("failed to load user plan", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, userPlanResponse{UserPlan: a})
}
