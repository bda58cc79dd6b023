// Package plans реализует админский HTTP-обработчик каталога планов.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type plansResponse struct {
	Plans []models.Plan `json:"plans"`
}

// ServeHTTP godoc
// @Summary Каталог планов (админ)
// @Description Возвращает все планы по имени. Пока каталог не создан, список пуст.
// @Tags Admin
// @Produce json
// @Success 200 {object} plansResponse
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Нет роли admin"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /admin/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plans"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, plansResponse{Plans: plans})
}
