// Package users реализует админский HTTP-обработчик списка пользователей.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает GET /api/admin/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сбор списка пользователей со статистикой.
type Service interface {
	ListUsers(ctx context.Context, page, limit int) (*models.UsersPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пользователи (админ)
// @Description Возвращает страницу пользователей со счётчиками слов и примеров и текущим планом.
// @Tags Admin
// @Produce json
// @Param page query int false "Номер страницы, по умолчанию 1"
// @Param limit query int false "Размер страницы, по умолчанию 50"
// @Success 200 {object} models.UsersPage
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Нет роли admin"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервиса аутентификации или базы"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Нечисловые значения заменяются значениями по умолчанию в сервисе.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	res, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("users listed", slog.Int("count", len(res.Users)), slog.Int("total", res.Total))
	response.OK(w, r, res)
}
