package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

const wordColumns = `id, user_id, word, meaning, examples, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// examplesColumn читает колонку examples. Значение, которое не массив, становится NULL,
// чтобы одна повреждённая строка не ломала выборку целиком.
type examplesColumn struct {
	dst     *models.Examples
	invalid bool
}

func (c *examplesColumn) Scan(src any) error {
	err := c.dst.Scan(src)
	if errors.Is(err, models.ErrExamplesNotArray) {
		*c.dst = nil
		c.invalid = true
		return nil
	}
	return err
}

func (s *Storage) scanWord(row rowScanner, withGroup bool) (models.Word, error) {
	var w models.Word
	examples := &examplesColumn{dst: &w.Examples}
	dest := []any{&w.ID, &w.UserID, &w.Word, &w.Meaning, examples, &w.Notes, &w.CreatedAt}
	if withGroup {
		dest = append(dest, &w.GroupID)
	}
	if err := row.Scan(dest...); err != nil {
		return w, err
	}
	if examples.invalid {
		s.log.Warn("word has malformed examples, treating as null",
			slog.String("word_id", w.ID), slog.String("user_id", w.UserID))
	}
	return w, nil
}

// ListWords возвращает слова пользователя в порядке добавления. Фильтр по группе
// применяется только если в схеме есть колонка group_id; иначе возвращаются все слова.
func (s *Storage) ListWords(ctx context.Context, userID string, groupID *string) ([]models.Word, error) {
	const op = "storage.ListWords"

	withGroup := s.caps.HasGroupID
	words, err := s.listWords(ctx, userID, groupID, withGroup)
	if withGroup && IsSchemaMissing(err) {
		// колонку могли откатить после старта
		words, err = s.listWords(ctx, userID, nil, false)
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return words, nil
}

func (s *Storage) listWords(ctx context.Context, userID string, groupID *string, withGroup bool) ([]models.Word, error) {
	cols := wordColumns
	if withGroup {
		cols += `, group_id`
	}
	query := `SELECT ` + cols + ` FROM words WHERE user_id = $1`
	args := []any{userID}
	if withGroup && groupID != nil {
		query += ` AND group_id = $2`
		args = append(args, *groupID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]models.Word, 0)
	for rows.Next() {
		w, err := s.scanWord(rows, withGroup)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// CountWords возвращает количество слов пользователя.
func (s *Storage) CountWords(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountWords"

	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, wrap(op, err)
	}
	return n, nil
}

// CountExamples возвращает общее количество примеров во всех словах пользователя.
func (s *Storage) CountExamples(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountExamples"

	query := `SELECT COALESCE(SUM(CASE WHEN jsonb_typeof(examples) = 'array'
			  THEN jsonb_array_length(examples) ELSE 0 END), 0)
			  FROM words
			  WHERE user_id = $1`
	var n int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, wrap(op, err)
	}
	return n, nil
}

// CreateWord сохраняет новое слово со значением.
func (s *Storage) CreateWord(ctx context.Context, userID, word, meaning string) (*models.Word, error) {
	const op = "storage.CreateWord"

	query := `INSERT INTO words (user_id, word, meaning)
			  VALUES ($1, $2, $3)
			  RETURNING ` + wordColumns
	w, err := s.scanWord(s.DB.QueryRowContext(ctx, query, userID, word, meaning), false)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &w, nil
}

// FindWordByText ищет последнее добавленное слово пользователя с таким текстом.
func (s *Storage) FindWordByText(ctx context.Context, userID, text string) (*models.Word, error) {
	const op = "storage.FindWordByText"

	query := `SELECT ` + wordColumns + `
			  FROM words
			  WHERE user_id = $1 AND word = $2
			  ORDER BY created_at DESC
			  LIMIT 1`
	w, err := s.scanWord(s.DB.QueryRowContext(ctx, query, userID, text), false)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &w, nil
}

// UpdateWordExamples заменяет примеры слова.
func (s *Storage) UpdateWordExamples(ctx context.Context, userID, wordID string, examples models.Examples) error {
	const op = "storage.UpdateWordExamples"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE words SET examples = $1 WHERE id = $2 AND user_id = $3`,
		examples, wordID, userID)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

// WordExists проверяет, что слово существует и принадлежит пользователю.
func (s *Storage) WordExists(ctx context.Context, userID, wordID string) (bool, error) {
	const op = "storage.WordExists"

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM words WHERE id = $1 AND user_id = $2)`,
		wordID, userID).Scan(&exists)
	if err != nil {
		return false, wrap(op, err)
	}
	return exists, nil
}

// SetWordGroup переносит слово в группу или убирает из группы при groupID == nil.
func (s *Storage) SetWordGroup(ctx context.Context, userID, wordID string, groupID *string) (*models.WordGroupAssignment, error) {
	const op = "storage.SetWordGroup"

	if !s.caps.HasGroupID {
		return nil, missing(op, "words.group_id")
	}

	query := `UPDATE words SET group_id = $1
			  WHERE id = $2 AND user_id = $3
			  RETURNING id, word, meaning, group_id`
	var a models.WordGroupAssignment
	err := s.DB.QueryRowContext(ctx, query, groupID, wordID, userID).
		Scan(&a.ID, &a.Word, &a.Meaning, &a.GroupID)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &a, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return &Error{Op: op, Kind: KindNotFound, Err: ErrNotFound}
	}
	return nil
}
