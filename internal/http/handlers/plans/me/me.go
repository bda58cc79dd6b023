// Package me реализует HTTP-обработчик плана текущего пользователя.
package me

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

// Handler обрабатывает GET /api/plan.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает вычисление плана пользователя.
type Service interface {
	PlanInfo(ctx context.Context, userID string) (*models.PlanInfo, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type planResponse struct {
	Plan *models.PlanInfo `json:"plan"`
}

// ServeHTTP godoc
// @Summary План пользователя
// @Description Возвращает действующий план, количество слов и остаток лимита.
// @Tags Plans
// @Produce json
// @Success 200 {object} planResponse
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /plan [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.me"
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

	info, err := h.service.PlanInfo(r.Context(), userID)
	if err != nil {
		log.Error("failed to resolve plan", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, planResponse{Plan: info})
}
