package models

import "time"

// AuthUser — учётная запись пользователя в сервисе аутентификации BaaS.
type AuthUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
}

// UserPlanSummary — краткие сведения о плане пользователя в админском списке.
type UserPlanSummary struct {
	ID            *string    `json:"id"`
	Name          string     `json:"name"`
	DisplayName   string     `json:"display_name"`
	PlanCreatedAt *time.Time `json:"plan_created_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// UserStats — пользователь с количеством слов, примеров и планом.
type UserStats struct {
	AuthUser
	WordCount    int             `json:"word_count"`
	ExampleCount int             `json:"example_count"`
	Plan         UserPlanSummary `json:"plan"`
}

// UsersPage — страница админского списка пользователей.
type UsersPage struct {
	Users []UserStats `json:"users"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
