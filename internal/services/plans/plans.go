// Package plans определяет действующий тарифный план пользователя и проверяет,
// разрешено ли ему действие (Capability Gate).
package plans

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/metrics"
	"github.com/magabrotheeeer/wordbook/internal/models"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

// Repository — операции хранилища, нужные сервису планов.
type Repository interface {
	GetUserPlan(ctx context.Context, userID string) (*models.UserPlanAssignment, error)
	GetPlanByName(ctx context.Context, name string) (*models.Plan, error)
	CountWords(ctx context.Context, userID string) (int, error)
	ListPlans(ctx context.Context, order storage.PlanOrder) ([]models.Plan, error)
}

// Service вычисляет действующий план и решения по возможностям.
// Решения не кэшируются: каждый вызов заново читает план и счётчик слов.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService создаёт сервис планов.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveEffectivePlan возвращает план, действующий для пользователя сейчас:
// активное назначение, иначе план каталога "free", иначе встроенный бесплатный план.
func (s *Service) ResolveEffectivePlan(ctx context.Context, userID string) (*models.EffectivePlan, error) {
	const op = "services.plans.ResolveEffectivePlan"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	assignment, err := s.repo.GetUserPlan(ctx, userID)
	switch {
	case err == nil:
		if assignment.Plan != nil && assignment.ActiveAt(s.now()) {
			return &models.EffectivePlan{Plan: *assignment.Plan, ExpiresAt: assignment.ExpiresAt}, nil
		}
	case storage.IsNotFound(err):
	case storage.IsSchemaMissing(err):
		log.Debug("user plans are not provisioned", sl.Err(err))
	default:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load user plan", fmt.Errorf("%s: %w", op, err))
	}

	free, err := s.repo.GetPlanByName(ctx, models.FreePlanName)
	switch {
	case err == nil:
		return &models.EffectivePlan{Plan: *free}, nil
	case storage.IsNotFound(err), storage.IsSchemaMissing(err):
		log.Debug("plan catalog is not provisioned, using built-in free plan", sl.Err(err))
		def := models.DefaultFreePlan()
		return &def, nil
	default:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load free plan", fmt.Errorf("%s: %w", op, err))
	}
}

// wordCount возвращает количество слов пользователя; без таблицы слов — 0.
func (s *Service) wordCount(ctx context.Context, userID string) (int, error) {
	const op = "services.plans.wordCount"

	n, err := s.repo.CountWords(ctx, userID)
	if err != nil {
		if storage.IsSchemaMissing(err) {
			return 0, nil
		}
		return 0, apperr.Wrap(apperr.CodeDBError, "Failed to count words", fmt.Errorf("%s: %w", op, err))
	}
	return n, nil
}

// CheckCapability проверяет, разрешено ли пользователю действие по его плану.
func (s *Service) CheckCapability(ctx context.Context, userID string, action models.Action) (models.Decision, error) {
	if !action.Valid() {
		return models.Decision{}, apperr.New(apperr.CodeInvalidRequest, fmt.Sprintf("Unknown action %q", action))
	}

	plan, err := s.ResolveEffectivePlan(ctx, userID)
	if err != nil {
		return models.Decision{}, err
	}

	var d models.Decision
	switch action {
	case models.ActionAddWord:
		count, err := s.wordCount(ctx, userID)
		if err != nil {
			return models.Decision{}, err
		}
		d = decide(count < plan.MaxWords,
			fmt.Sprintf("You have reached your plan limit of %d words. Please upgrade to add more words.", plan.MaxWords))
	case models.ActionExport:
		d = decide(plan.CanExport,
			"Export is not available in your current plan. Please upgrade to Pro plan.")
	case models.ActionUseGroups:
		d = decide(plan.CanUseGroups,
			"Groups feature is not available in your current plan. Please upgrade to Pro plan.")
	case models.ActionAccessExercises:
		d = decide(plan.CanAccessExercises,
			"Exercises feature is not available in your current plan. Please upgrade to Pro+ plan.")
	}

	if !d.Allowed {
		metrics.CapabilityDenials.WithLabelValues(string(action)).Inc()
		s.log.Info("capability denied",
			slog.String("user_id", userID),
			slog.String("action", string(action)),
			slog.String("plan", plan.Name))
	}
	return d, nil
}

// Require возвращает plan_feature_unavailable, если действие запрещено.
func (s *Service) Require(ctx context.Context, userID string, action models.Action) error {
	d, err := s.CheckCapability(ctx, userID, action)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return apperr.New(apperr.CodePlanFeatureUnavailable, d.Message)
	}
	return nil
}

// PlanInfo возвращает действующий план вместе с использованием лимита слов.
func (s *Service) PlanInfo(ctx context.Context, userID string) (*models.PlanInfo, error) {
	plan, err := s.ResolveEffectivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.wordCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.PlanInfo{
		EffectivePlan:  *plan,
		WordCount:      count,
		RemainingWords: max(0, plan.MaxWords-count),
	}, nil
}

// ListPlans возвращает публичный каталог планов по возрастанию цены.
// Пока каталог не создан, возвращается пустой список.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "services.plans.ListPlans"

	plans, err := s.repo.ListPlans(ctx, storage.PlanOrderPrice)
	if err != nil {
		if storage.IsSchemaMissing(err) {
			return []models.Plan{}, nil
		}
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to list plans", fmt.Errorf("%s: %w", op, err))
	}
	return plans, nil
}

func decide(allowed bool, denial string) models.Decision {
	if allowed {
		return models.Decision{Allowed: true}
	}
	return models.Decision{Allowed: false, Message: denial}
}
