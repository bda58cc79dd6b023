// Package list реализует публичный HTTP-обработчик каталога планов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает GET /api/plans. Авторизация не требуется.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение каталога планов.
type Service interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type plansResponse struct {
	Plans []models.Plan `json:"plans"`
}

// ServeHTTP godoc
// @Summary Каталог планов
// @Description Возвращает тарифные планы по возрастанию цены.
// @Tags Plans
// @Produce json
// @Success 200 {object} plansResponse
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"
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
	if plans == nil {
		plans = []models.Plan{}
	}

	response.OK(w, r, plansResponse{Plans: plans})
}
