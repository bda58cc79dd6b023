// Package middlewarectx содержит HTTP middleware сервиса: аутентификацию по Bearer-токену,
// проверку роли администратора, ограничение частоты запросов к LLM, проверку формата
// выгрузки и метрики запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserID — ключ идентификатора пользователя в контексте.
const UserID Key = "user_id"

// Verifier проверяет токен и возвращает идентификатор пользователя.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// WithUserID кладёт идентификатор пользователя в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserID, userID)
}

// UserIDFrom достаёт идентификатор пользователя из контекста.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

// bearerToken извлекает токен из заголовка Authorization. Префикс Bearer
// сравнивается без учёта регистра.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// JWTMiddleware проверяет Bearer-токен через verifier и кладёт идентификатор
// пользователя в контекст. Без токена или с недействительным токеном отвечает 401,
// при недоступности сервиса аутентификации — 500 auth_error.
func JWTMiddleware(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Info("missing bearer token")
				response.Fail(w, r, apperr.New(apperr.CodeUnauthorized, "Missing Bearer token"))
				return
			}

			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if apperr.Is(err, apperr.CodeUnauthorized) {
					log.Info("token rejected", sl.Err(err))
				} else {
					log.Error("token verification failed", sl.Err(err))
				}
				response.Fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
