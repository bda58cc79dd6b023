package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/services/export"
)

// ExportFormatKey — ключ разобранного формата выгрузки в контексте.
const ExportFormatKey Key = "export_format"

// ExportFormat разбирает параметр format до аутентификации: неверный формат
// отклоняется с 400 независимо от токена и плана.
func ExportFormat(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			format, err := export.ParseFormat(r.URL.Query().Get("format"))
			if err != nil {
				log.Info("invalid export format", slog.String("format", r.URL.Query().Get("format")))
				response.Fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ExportFormatKey, format)))
		})
	}
}

// ExportFormatFrom возвращает формат, разобранный ExportFormat. Без middleware — json.
func ExportFormatFrom(ctx context.Context) export.Format {
	if f, ok := ctx.Value(ExportFormatKey).(export.Format); ok {
		return f
	}
	return export.FormatJSON
}
