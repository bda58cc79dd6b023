// Package example реализует HTTP-обработчик генерации примеров употребления слова.
package example

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

// Handler обрабатывает POST /api/example.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику генерации примеров.
type Service interface {
	GenerateExamples(ctx context.Context, userID string, req models.ExampleRequest) ([]models.StructuredExample, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

type examplesResponse struct {
	Examples []models.StructuredExample `json:"examples"`
}

// ServeHTTP godoc
// @Summary Сгенерировать примеры
// @Description Генерирует два примера с переводом для сохранённого слова и добавляет их к уже сохранённым.
// @Tags Words
// @Accept json
// @Produce json
// @Param request body models.ExampleRequest true "Слово и языки"
// @Success 200 {object} examplesResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Слово не найдено"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка LLM или базы"
// @Security BearerAuth
// @Router /example [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.words.example"
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

	var req models.ExampleRequest
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

	examples, err := h.service.GenerateExamples(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to generate examples", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("examples generated", slog.Int("count", len(examples)))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, examplesResponse{Examples: examples})
}
