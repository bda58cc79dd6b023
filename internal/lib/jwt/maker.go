// Package jwt выпускает и проверяет HS256-токены в формате, который использует
// сервис аутентификации BaaS: идентификатор пользователя в sub, email и роль в отдельных полях.
package jwt

import (
	"time"
)

// Maker описывает генерацию и разбор токенов.
type Maker interface {
	GenerateToken(userID, email, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом проекта и временем жизни токена.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	audience  string
}

// NewJWTMaker создаёт Maker. Пустая audience не проверяется при разборе.
func NewJWTMaker(secretKey string, ttl time.Duration, audience string) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		audience:  audience,
	}
}
