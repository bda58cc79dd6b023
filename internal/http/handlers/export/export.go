// Package export реализует HTTP-обработчик выгрузки словаря в JSON или CSV.
//
// Формат разбирается middleware ExportFormat ещё до аутентификации, поэтому неверный
// формат отклоняется с 400 независимо от токена и плана пользователя.
package export

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
	exportservice "github.com/magabrotheeeer/wordbook/internal/services/export"
)

// Handler обрабатывает GET /api/export.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику выгрузки.
type Service interface {
	Export(ctx context.Context, userID string, format exportservice.Format, rawGroupID string) (*exportservice.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// wordsResponse — тело JSON-выгрузки.
type wordsResponse struct {
	Words []models.Word `json:"words"`
}

// ServeHTTP godoc
// @Summary Выгрузить словарь
// @Description Выгружает слова пользователя в JSON или CSV. Доступно на планах с выгрузкой.
// @Tags Export
// @Produce json
// @Produce text/csv
// @Param format query string false "json или csv" default(json)
// @Param group_id query string false "UUID группы"
// @Success 200 {object} wordsResponse
// @Failure 400 {object} response.ErrorResponse "Неверный формат или group_id"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Выгрузка недоступна на плане"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы или сервиса аутентификации"
// @Security BearerAuth
// @Router /export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.export"
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

	format := middlewarectx.ExportFormatFrom(r.Context())
	res, err := h.service.Export(r.Context(), userID, format, r.URL.Query().Get("group_id"))
	if err != nil {
		log.Error("export failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	if res.Format == exportservice.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(res.Body)); err != nil {
			log.Error("failed to write csv", sl.Err(err))
		}
		return
	}

	words := res.Words
	if words == nil {
		words = []models.Word{}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, wordsResponse{Words: words})
}
