// Package check реализует HTTP-обработчик проверки возможности по плану.
package check

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

// Handler обрабатывает GET /api/plan/check?action=...
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает проверку возможности.
type Service interface {
	CheckCapability(ctx context.Context, userID string, action models.Action) (models.Decision, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить возможность
// @Description Сообщает, разрешено ли действие по текущему плану. Запрет не является ошибкой.
// @Tags Plans
// @Produce json
// @Param action query string true "add_word, export, use_groups или access_exercises"
// @Success 200 {object} models.Decision
// @Failure 400 {object} response.ErrorResponse "Неизвестное действие"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /plan/check [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.check"
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

	action := r.URL.Query().Get("action")
	if action == "" {
		response.Fail(w, r, apperr.New(apperr.CodeInvalidRequest, "'action' is required"))
		return
	}

	d, err := h.service.CheckCapability(r.Context(), userID, models.Action(action))
	if err != nil {
		log.Error("failed to check capability", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, d)
}
