package storage

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

// PlanOrder задаёт сортировку каталога планов.
type PlanOrder int

const (
	PlanOrderPrice PlanOrder = iota
	PlanOrderName
)

func (o PlanOrder) clause() string {
	if o == PlanOrderName {
		return `name ASC`
	}
	return `price ASC, name ASC`
}

const planColumns = `id, name, display_name, max_words, can_export, can_use_groups,
	can_access_exercises, price, currency, created_at`

func scanPlan(row rowScanner) (models.Plan, error) {
	var (
		p         models.Plan
		createdAt time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.DisplayName, &p.MaxWords, &p.CanExport, &p.CanUseGroups,
		&p.CanAccessExercises, &p.Price, &p.Currency, &createdAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = &createdAt
	return p, nil
}

// ListPlans возвращает каталог планов.
func (s *Storage) ListPlans(ctx context.Context, order PlanOrder) ([]models.Plan, error) {
	const op = "storage.ListPlans"

	if !s.caps.HasPlans {
		return nil, missing(op, "plans")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY `+order.clause())
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return plans, nil
}

// GetPlanByName возвращает план каталога по имени.
func (s *Storage) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	const op = "storage.GetPlanByName"

	if !s.caps.HasPlans {
		return nil, missing(op, "plans")
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE name = $1`, name))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &p, nil
}

// GetPlanByID возвращает план каталога по id.
func (s *Storage) GetPlanByID(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlanByID"

	if !s.caps.HasPlans {
		return nil, missing(op, "plans")
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &p, nil
}

// UpdatePlan применяет частичное обновление плана и возвращает план целиком.
func (s *Storage) UpdatePlan(ctx context.Context, id string, upd models.PlanUpdate) (*models.Plan, error) {
	const op = "storage.UpdatePlan"

	if !s.caps.HasPlans {
		return nil, missing(op, "plans")
	}
	if upd.Empty() {
		return s.GetPlanByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if upd.DisplayName != nil {
		add("display_name", *upd.DisplayName)
	}
	if upd.MaxWords != nil {
		add("max_words", *upd.MaxWords)
	}
	if upd.CanExport != nil {
		add("can_export", *upd.CanExport)
	}
	if upd.CanUseGroups != nil {
		add("can_use_groups", *upd.CanUseGroups)
	}
	if upd.CanAccessExercises != nil {
		add("can_access_exercises", *upd.CanAccessExercises)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Currency != nil {
		add("currency", *upd.Currency)
	}
	args = append(args, id)

	query := `UPDATE plans SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + planColumns
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &p, nil
}

// GetUserPlan возвращает назначение плана пользователю вместе с планом каталога.
// Назначения на удалённые из каталога планы не возвращаются.
func (s *Storage) GetUserPlan(ctx context.Context, userID string) (*models.UserPlanAssignment, error) {
	const op = "storage.GetUserPlan"

	if !s.caps.HasUserPlans {
		return nil, missing(op, "user_plans")
	}
	if !s.caps.HasPlans {
		return nil, missing(op, "plans")
	}

	query := `SELECT up.user_id, up.plan_id, up.created_at, up.expires_at,
			  p.id, p.name, p.display_name, p.max_words, p.can_export, p.can_use_groups,
			  p.can_access_exercises, p.price, p.currency, p.created_at
			  FROM user_plans up
			  JOIN plans p ON p.id = up.plan_id
			  WHERE up.user_id = $1`
	var (
		a             models.UserPlanAssignment
		p             models.Plan
		planCreatedAt time.Time
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&a.UserID, &a.PlanID, &a.CreatedAt, &a.ExpiresAt,
		&p.ID, &p.Name, &p.DisplayName, &p.MaxWords, &p.CanExport, &p.CanUseGroups,
		&p.CanAccessExercises, &p.Price, &p.Currency, &planCreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	p.CreatedAt = &planCreatedAt
	a.Plan = &p
	return &a, nil
}

// UpsertUserPlan назначает пользователю план, заменяя предыдущее назначение.
func (s *Storage) UpsertUserPlan(ctx context.Context, userID, planID string, expiresAt *time.Time) (*models.UserPlanAssignment, error) {
	const op = "storage.UpsertUserPlan"

	if !s.caps.HasUserPlans {
		return nil, missing(op, "user_plans")
	}

	query := `INSERT INTO user_plans (user_id, plan_id, expires_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_id)
			  DO UPDATE SET plan_id = EXCLUDED.plan_id, expires_at = EXCLUDED.expires_at
			  RETURNING user_id, plan_id, created_at, expires_at`
	var a models.UserPlanAssignment
	err := s.DB.QueryRowContext(ctx, query, userID, planID, expiresAt).
		Scan(&a.UserID, &a.PlanID, &a.CreatedAt, &a.ExpiresAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &a, nil
}

// HasRole проверяет, что у пользователя есть роль.
func (s *Storage) HasRole(ctx context.Context, userID, role string) (bool, error) {
	const op = "storage.HasRole"

	if !s.caps.HasRoles {
		return false, missing(op, "user_roles")
	}

	var ok bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, role).Scan(&ok)
	if err != nil {
		return false, wrap(op, err)
	}
	return ok, nil
}
