// Package auth проверяет токены пользователей и обращается к админскому API
// сервиса аутентификации BaaS.
package auth

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/jwt"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Verifier проверяет токен и возвращает идентификатор пользователя.
// Ошибки — *apperr.Error с кодом unauthorized или auth_error.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

func errUnauthorized(msg string, cause error) error {
	return apperr.Wrap(apperr.CodeUnauthorized, msg, cause)
}

func errAuthService(cause error) error {
	return apperr.Wrap(apperr.CodeAuthError, "Auth service error", cause)
}

// JWTVerifier проверяет токены локально по секрету проекта.
type JWTVerifier struct {
	maker jwt.Maker
}

// NewJWTVerifier создаёт локальный проверяльщик токенов.
func NewJWTVerifier(maker jwt.Maker) *JWTVerifier {
	return &JWTVerifier{maker: maker}
}

// Verify разбирает токен и возвращает sub.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims, err := v.maker.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrNoSubject) {
			return "", errUnauthorized("Invalid user", err)
		}
		return "", errUnauthorized("Invalid token", err)
	}
	return claims.Subject, nil
}

// NoDirectory используется, когда админский API сервиса аутентификации не настроен.
type NoDirectory struct{}

// ListUsers всегда возвращает auth_error.
func (NoDirectory) ListUsers(context.Context, int, int) ([]models.AuthUser, int, error) {
	return nil, 0, apperr.New(apperr.CodeAuthError, "User directory is not configured")
}
