// Package translate реализует HTTP-обработчик перевода и сохранения нового слова.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/lib/validate"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает POST /api/translate.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику перевода слова.
type Service interface {
	Translate(ctx context.Context, userID string, req models.TranslateRequest) (*models.TranslateResult, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Перевести и сохранить слово
// @Description Получает значение слова от языковой модели и сохраняет слово в словарь. Учитывает лимит слов плана.
// @Tags Words
// @Accept json
// @Produce json
// @Param request body models.TranslateRequest true "Слово и языки"
// @Success 200 {object} models.TranslateResult
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Достигнут лимит слов"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка LLM или базы"
// @Security BearerAuth
// @Router /translate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.words.translate"
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

	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		response.Fail(w, r, apperr.New(apperr.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Fail(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Translate(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to translate word", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("word translated", slog.String("word", res.Word))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}
