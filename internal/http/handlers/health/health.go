package health

import (
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

type healthResponse struct {
	OK bool `json:"ok"`
}

// ServeHTTP godoc
// @Summary Проверка доступности
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, healthResponse{OK: true})
}
