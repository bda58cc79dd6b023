// Package list реализует HTTP-обработчик списка слов пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает GET /api/words.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение слов.
type Service interface {
	List(ctx context.Context, userID, rawGroupID string) ([]models.Word, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type wordsResponse struct {
	Words []models.Word `json:"words"`
}

// ServeHTTP godoc
// @Summary Список слов
// @Description Возвращает слова пользователя по возрастанию даты добавления, с необязательным фильтром по группе.
// @Tags Words
// @Produce json
// @Param group_id query string false "UUID группы"
// @Success 200 {object} wordsResponse
// @Failure 400 {object} response.ErrorResponse "Неверный group_id"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /words [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.words.list"
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

	words, err := h.service.List(r.Context(), userID, r.URL.Query().Get("group_id"))
	if err != nil {
		log.Error("failed to list words", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, wordsResponse{Words: words})
}
