// Package setgroup реализует HTTP-обработчик перемещения слова в группу.
package setgroup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Handler обрабатывает PATCH /api/words/{id}/group.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает перемещение слова.
type Service interface {
	SetGroup(ctx context.Context, userID, wordID string, groupID *string) (*models.WordGroupAssignment, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Request — тело запроса. group_id обязателен, null убирает слово из группы.
type Request struct {
	GroupID json.RawMessage `json:"group_id" swaggertype:"string"`
}

type wordResponse struct {
	Word *models.WordGroupAssignment `json:"word"`
}

// groupID разбирает поле group_id: отсутствие поля — ошибка, null — nil.
func (req Request) groupID() (*string, error) {
	if len(req.GroupID) == 0 {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'group_id' is required (can be null to remove from group)")
	}
	if string(req.GroupID) == "null" {
		return nil, nil
	}
	var id string
	if err := json.Unmarshal(req.GroupID, &id); err != nil {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'group_id' must be a string or null")
	}
	return &id, nil
}

// ServeHTTP godoc
// @Summary Переместить слово в группу
// @Description Назначает слову группу или убирает его из группы, если group_id равен null.
// @Tags Words
// @Accept json
// @Produce json
// @Param id path string true "UUID слова"
// @Param request body Request true "Группа"
// @Success 200 {object} wordResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или группы не настроены"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Слово или группа не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы"
// @Security BearerAuth
// @Router /words/{id}/group [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.words.setgroup"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request", sl.Err(err))
	}
	groupID, err := req.groupID()
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	word, err := h.service.SetGroup(r.Context(), userID, chi.URLParam(r, "id"), groupID)
	if err != nil {
		log.Error("failed to set word group", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, wordResponse{Word: word})
}
