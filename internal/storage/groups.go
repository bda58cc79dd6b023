package storage

import (
	"context"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

const groupColumns = `id, user_id, name, created_at`

func scanGroup(row rowScanner) (models.WordGroup, error) {
	var g models.WordGroup
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt)
	return g, err
}

// ListGroups возвращает группы пользователя, новые первыми.
func (s *Storage) ListGroups(ctx context.Context, userID string) ([]models.WordGroup, error) {
	const op = "storage.ListGroups"

	if !s.caps.HasGroups {
		return nil, missing(op, "word_groups")
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM word_groups WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	groups := make([]models.WordGroup, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return groups, nil
}

// CreateGroup создаёт группу.
func (s *Storage) CreateGroup(ctx context.Context, userID, name string) (*models.WordGroup, error) {
	const op = "storage.CreateGroup"

	if !s.caps.HasGroups {
		return nil, missing(op, "word_groups")
	}

	g, err := scanGroup(s.DB.QueryRowContext(ctx,
		`INSERT INTO word_groups (user_id, name) VALUES ($1, $2) RETURNING `+groupColumns,
		userID, name))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &g, nil
}

// GetGroup возвращает группу пользователя по id.
func (s *Storage) GetGroup(ctx context.Context, userID, groupID string) (*models.WordGroup, error) {
	const op = "storage.GetGroup"

	if !s.caps.HasGroups {
		return nil, missing(op, "word_groups")
	}

	g, err := scanGroup(s.DB.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM word_groups WHERE id = $1 AND user_id = $2`,
		groupID, userID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &g, nil
}

// RenameGroup меняет название группы.
func (s *Storage) RenameGroup(ctx context.Context, userID, groupID, name string) (*models.WordGroup, error) {
	const op = "storage.RenameGroup"

	if !s.caps.HasGroups {
		return nil, missing(op, "word_groups")
	}

	g, err := scanGroup(s.DB.QueryRowContext(ctx,
		`UPDATE word_groups SET name = $1 WHERE id = $2 AND user_id = $3 RETURNING `+groupColumns,
		name, groupID, userID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return &g, nil
}

// DeleteGroup удаляет группу. Слова группы остаются, их group_id обнуляется
// в той же транзакции, если колонка есть в схеме.
func (s *Storage) DeleteGroup(ctx context.Context, userID, groupID string) (err error) {
	const op = "storage.DeleteGroup"

	if !s.caps.HasGroups {
		return missing(op, "word_groups")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if s.caps.HasGroupID {
		if _, err = tx.ExecContext(ctx,
			`UPDATE words SET group_id = NULL WHERE group_id = $1 AND user_id = $2`,
			groupID, userID); err != nil {
			return wrap(op, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM word_groups WHERE id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return wrap(op, err)
	}
	if err = requireAffected(op, res); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}
