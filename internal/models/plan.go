package models

import "time"

// Plan — тарифный план из глобального каталога.
type Plan struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	DisplayName        string     `json:"display_name"`
	MaxWords           int        `json:"max_words"`
	CanExport          bool       `json:"can_export"`
	CanUseGroups       bool       `json:"can_use_groups"`
	CanAccessExercises bool       `json:"can_access_exercises"`
	Price              float64    `json:"price"`
	Currency           string     `json:"currency"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

// EffectivePlan — план, фактически действующий для пользователя.
// ExpiresAt равен nil для бессрочных назначений и для бесплатного плана.
type EffectivePlan struct {
	Plan
	ExpiresAt *time.Time `json:"expires_at"`
}

// UserPlanAssignment — назначение плана пользователю (одно на пользователя).
// Plan заполняется при чтении вместе с каталогом и может быть nil,
// если план был удалён из каталога.
type UserPlanAssignment struct {
	UserID    string     `json:"user_id"`
	PlanID    string     `json:"plan_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Plan      *Plan      `json:"plan,omitempty"`
}

// ActiveAt сообщает, действует ли назначение в момент now.
func (a UserPlanAssignment) ActiveAt(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// PlanUpdate — частичное обновление плана администратором. nil-поля не меняются.
type PlanUpdate struct {
	DisplayName        *string  `json:"display_name,omitempty"`
	MaxWords           *int     `json:"max_words,omitempty" validate:"omitempty,gte=0"`
	CanExport          *bool    `json:"can_export,omitempty"`
	CanUseGroups       *bool    `json:"can_use_groups,omitempty"`
	CanAccessExercises *bool    `json:"can_access_exercises,omitempty"`
	Price              *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency           *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// Empty возвращает true, если в обновлении нет ни одного поля.
func (u PlanUpdate) Empty() bool {
	return u.DisplayName == nil && u.MaxWords == nil && u.CanExport == nil &&
		u.CanUseGroups == nil && u.CanAccessExercises == nil && u.Price == nil && u.Currency == nil
}

// AssignPlanRequest — запрос администратора на назначение плана.
type AssignPlanRequest struct {
	UserID    string     `json:"user_id"`
	PlanID    string     `json:"plan_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// FreePlanName — имя плана каталога, который действует по умолчанию.
const FreePlanName = "free"

// DefaultFreePlan возвращает встроенный бесплатный план, который действует,
// пока каталог планов не создан миграцией.
func DefaultFreePlan() EffectivePlan {
	return EffectivePlan{
		Plan: Plan{
			ID:          FreePlanName,
			Name:        FreePlanName,
			DisplayName: "Free Plan",
			MaxWords:    10,
			Price:       0,
			Currency:    "USD",
		},
	}
}

// PlanInfo — план пользователя вместе с использованием лимита слов.
type PlanInfo struct {
	EffectivePlan
	WordCount      int `json:"word_count"`
	RemainingWords int `json:"remaining_words"`
}
