// Package admin реализует операции администратора: управление каталогом планов,
// список пользователей со статистикой и назначение планов.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

// RoleAdmin — роль администратора в user_roles.
const RoleAdmin = "admin"

const (
	msgPlansNotSetUp = "Plans feature is not set up. Please run the database migration first."

	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 1000
	// fanOutLimit ограничивает число одновременных запросов к базе при сборе статистики.
	fanOutLimit = 8
)

// Repository — операции хранилища, нужные администратору.
type Repository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	ListPlans(ctx context.Context, order storage.PlanOrder) ([]models.Plan, error)
	GetPlanByID(ctx context.Context, id string) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id string, upd models.PlanUpdate) (*models.Plan, error)
	GetUserPlan(ctx context.Context, userID string) (*models.UserPlanAssignment, error)
	UpsertUserPlan(ctx context.Context, userID, planID string, expiresAt *time.Time) (*models.UserPlanAssignment, error)
	CountWords(ctx context.Context, userID string) (int, error)
	CountExamples(ctx context.Context, userID string) (int, error)
}

// UserDirectory — список пользователей сервиса аутентификации.
type UserDirectory interface {
	ListUsers(ctx context.Context, page, perPage int) ([]models.AuthUser, int, error)
}

// Service реализует операции администратора.
type Service struct {
	repo  Repository
	users UserDirectory
	log   *slog.Logger
}

// NewService создаёт сервис администратора.
func NewService(repo Repository, users UserDirectory, log *slog.Logger) *Service {
	return &Service{repo: repo, users: users, log: log}
}

// IsAdmin сообщает, есть ли у пользователя роль admin. Без таблицы ролей администраторов нет.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	const op = "services.admin.IsAdmin"

	ok, err := s.repo.HasRole(ctx, userID, RoleAdmin)
	if storage.IsSchemaMissing(err) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.CodeDBError, "Failed to check role", fmt.Errorf("%s: %w", op, err))
	}
	return ok, nil
}

// RequireAdmin возвращает forbidden, если пользователь не администратор.
func (s *Service) RequireAdmin(ctx context.Context, userID string) error {
	ok, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn("admin access denied", slog.String("user_id", userID))
		return apperr.New(apperr.CodeForbidden, "Admin access required")
	}
	return nil
}

// ListPlans возвращает весь каталог по имени. Без каталога — пустой список.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "services.admin.ListPlans"

	plans, err := s.repo.ListPlans(ctx, storage.PlanOrderName)
	if storage.IsSchemaMissing(err) {
		return []models.Plan{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to list plans", fmt.Errorf("%s: %w", op, err))
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// UpdatePlan частично обновляет план каталога.
func (s *Service) UpdatePlan(ctx context.Context, planID string, upd models.PlanUpdate) (*models.Plan, error) {
	const op = "services.admin.UpdatePlan"

	if !isUUID(planID) {
		return nil, apperr.New(apperr.CodeNotFound, "Plan not found")
	}
	if upd.DisplayName != nil {
		v := strings.TrimSpace(*upd.DisplayName)
		upd.DisplayName = &v
	}
	if upd.Currency != nil {
		v := strings.TrimSpace(*upd.Currency)
		upd.Currency = &v
	}

	plan, err := s.repo.UpdatePlan(ctx, planID, upd)
	switch {
	case storage.IsNotFound(err):
		return nil, apperr.New(apperr.CodeNotFound, "Plan not found")
	case storage.IsSchemaMissing(err):
		return nil, apperr.Wrap(apperr.CodeFeatureNotAvailable, msgPlansNotSetUp, err)
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to update plan", fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("plan updated", slog.String("op", op), slog.String("plan_id", planID))
	return plan, nil
}

// ListUsers возвращает страницу пользователей сервиса аутентификации со статистикой.
// Статистика собирается параллельно, порядок пользователей сохраняется.
// Любая ошибка при сборе статистики прерывает весь запрос.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (*models.UsersPage, error) {
	const op = "services.admin.ListUsers"

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	authUsers, total, err := s.users.ListUsers(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserStats, len(authUsers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, u := range authUsers {
		out[i].AuthUser = u
		stats := &out[i]

		g.Go(func() error {
			n, err := s.repo.CountWords(gctx, u.ID)
			if err != nil && !storage.IsSchemaMissing(err) {
				return fmt.Errorf("count words of %s: %w", u.ID, err)
			}
			stats.WordCount = n
			return nil
		})
		g.Go(func() error {
			n, err := s.repo.CountExamples(gctx, u.ID)
			if err != nil && !storage.IsSchemaMissing(err) {
				return fmt.Errorf("count examples of %s: %w", u.ID, err)
			}
			stats.ExampleCount = n
			return nil
		})
		g.Go(func() error {
			a, err := s.repo.GetUserPlan(gctx, u.ID)
			switch {
			case storage.IsNotFound(err), storage.IsSchemaMissing(err):
				stats.Plan = freeSummary()
				return nil
			case err != nil:
				return fmt.Errorf("load plan of %s: %w", u.ID, err)
			}
			stats.Plan = summary(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load user statistics", fmt.Errorf("%s: %w", op, err))
	}

	return &models.UsersPage{Users: out, Total: total, Page: page, Limit: limit}, nil
}

func freeSummary() models.UserPlanSummary {
	return models.UserPlanSummary{Name: models.FreePlanName, DisplayName: "Free Plan"}
}

func summary(a *models.UserPlanAssignment) models.UserPlanSummary {
	sum := freeSummary()
	planID := a.PlanID
	createdAt := a.CreatedAt
	sum.ID = &planID
	sum.PlanCreatedAt = &createdAt
	sum.ExpiresAt = a.ExpiresAt
	if a.Plan != nil {
		if a.Plan.Name != "" {
			sum.Name = a.Plan.Name
		}
		if a.Plan.DisplayName != "" {
			sum.DisplayName = a.Plan.DisplayName
		}
	}
	return sum
}

// AssignPlan назначает пользователю план, заменяя предыдущее назначение.
func (s *Service) AssignPlan(ctx context.Context, req models.AssignPlanRequest) (*models.UserPlanAssignment, error) {
	const op = "services.admin.AssignPlan"

	userID := strings.TrimSpace(req.UserID)
	planID := strings.TrimSpace(req.PlanID)
	if userID == "" || planID == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'user_id' and 'plan_id' are required")
	}
	if !isUUID(userID) {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'user_id' must be a valid UUID")
	}
	if !isUUID(planID) {
		return nil, apperr.New(apperr.CodeNotFound, "Plan not found")
	}

	plan, err := s.repo.GetPlanByID(ctx, planID)
	switch {
	case storage.IsNotFound(err):
		return nil, apperr.New(apperr.CodeNotFound, "Plan not found")
	case storage.IsSchemaMissing(err):
		return nil, apperr.Wrap(apperr.CodeFeatureNotAvailable, msgPlansNotSetUp, err)
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load plan", fmt.Errorf("%s: %w", op, err))
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := req.ExpiresAt.UTC()
		expiresAt = &t
	}

	a, err := s.repo.UpsertUserPlan(ctx, userID, planID, expiresAt)
	switch {
	case storage.IsSchemaMissing(err):
		return nil, apperr.Wrap(apperr.CodeFeatureNotAvailable, msgPlansNotSetUp, err)
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to assign plan", fmt.Errorf("%s: %w", op, err))
	}
	a.Plan = plan

	s.log.Info("plan assigned", slog.String("op", op), slog.String("user_id", userID), slog.String("plan", plan.Name))
	return a, nil
}

// GetUserPlan возвращает назначение плана пользователя или nil, если его нет
// или таблица назначений ещё не создана.
func (s *Service) GetUserPlan(ctx context.Context, userID string) (*models.UserPlanAssignment, error) {
	const op = "services.admin.GetUserPlan"

	if !isUUID(userID) {
		return nil, nil
	}
	a, err := s.repo.GetUserPlan(ctx, userID)
	switch {
	case storage.IsNotFound(err), storage.IsSchemaMissing(err):
		return nil, nil
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load user plan", fmt.Errorf("%s: %w", op, err))
	}
	return a, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
