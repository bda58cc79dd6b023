package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
)

// AdminChecker проверяет, что пользователь администратор.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, userID string) error
}

// AdminMiddleware пропускает дальше только администраторов. Должен стоять после JWTMiddleware.
func AdminMiddleware(log *slog.Logger, checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				response.Fail(w, r, apperr.New(apperr.CodeUnauthorized, "Missing Bearer token"))
				return
			}

			if err := checker.RequireAdmin(r.Context(), userID); err != nil {
				if !apperr.Is(err, apperr.CodeForbidden) {
					log.Error("failed to check admin role", sl.Err(err))
				}
				response.Fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
