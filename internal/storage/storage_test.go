package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

const testUserID = "8f1d6a2e-52c4-4b61-9a57-3f1f0e2a9c11"

var wordCols = []string{"id", "user_id", "word", "meaning", "examples", "notes", "created_at"}

func newMockStorage(t *testing.T, caps SchemaCapabilities) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db, Options{Capabilities: caps}), mock
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"no rows", sql.ErrNoRows, KindNotFound},
		{"undefined table", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, KindSchemaMissing},
		{"undefined column", fmt.Errorf("q: %w", &pgconn.PgError{Code: pgerrcode.UndefinedColumn}), KindSchemaMissing},
		{"invalid schema", &pgconn.PgError{Code: pgerrcode.InvalidSchemaName}, KindSchemaMissing},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, KindTransient},
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, KindTransient},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"already tagged", &Error{Op: "x", Kind: KindNotFound, Err: errors.New("gone")}, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestProbeSchema(t *testing.T) {
	s, mock := newMockStorage(t, SchemaCapabilities{})

	mock.ExpectQuery("SELECT\\s+EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e"}).
			AddRow(false, true, true, true, false))

	caps, err := ProbeSchema(context.Background(), s.DB)
	require.NoError(t, err)
	assert.Equal(t, SchemaCapabilities{HasGroups: true, HasPlans: true, HasUserPlans: true}, caps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWords_GroupFilter(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	groupID := "0b6c3e1a-9a55-4d53-8c6b-2bb0cf1d7f10"

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, user_id, word, meaning, examples, notes, created_at, group_id FROM words WHERE user_id = $1 AND group_id = $2 ORDER BY created_at ASC`)).
		WithArgs(testUserID, groupID).
		WillReturnRows(sqlmock.NewRows(append(wordCols, "group_id")).
			AddRow("w1", testUserID, "run", "koşmak", []byte(`[{"sentence":"I run","translation":"Koşarım"}]`), nil, created, groupID))

	words, err := s.ListWords(context.Background(), testUserID, &groupID)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "run", words[0].Word)
	assert.Equal(t, "koşmak", *words[0].Meaning)
	assert.Nil(t, words[0].Notes)
	assert.Equal(t, groupID, *words[0].GroupID)
	assert.Equal(t, models.Examples{models.StructuredExample{Sentence: "I run", Translation: "Koşarım"}}, words[0].Examples)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWords_NoGroupColumn(t *testing.T) {
	s, mock := newMockStorage(t, SchemaCapabilities{})
	groupID := "0b6c3e1a-9a55-4d53-8c6b-2bb0cf1d7f10"

	// фильтр по группе игнорируется, возвращаются все слова
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, user_id, word, meaning, examples, notes, created_at FROM words WHERE user_id = $1 ORDER BY created_at ASC`)).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(wordCols).
			AddRow("w1", testUserID, "run", nil, nil, nil, time.Now()).
			AddRow("w2", testUserID, "walk", "yürümek", []byte(`["old"]`), "note", time.Now()))

	words, err := s.ListWords(context.Background(), testUserID, &groupID)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Nil(t, words[0].Examples)
	assert.Nil(t, words[0].GroupID)
	assert.Equal(t, models.Examples{models.LegacyExample("old")}, words[1].Examples)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWords_RetriesWithoutGroupColumn(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())

	mock.ExpectQuery("SELECT .*, group_id FROM words").
		WithArgs(testUserID).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedColumn, Message: `column "group_id" does not exist`})
	mock.ExpectQuery("SELECT id, user_id, word, meaning, examples, notes, created_at FROM words").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(wordCols).AddRow("w1", testUserID, "run", nil, nil, nil, time.Now()))

	words, err := s.ListWords(context.Background(), testUserID, nil)
	require.NoError(t, err)
	assert.Len(t, words, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWords_MalformedExamples(t *testing.T) {
	s, mock := newMockStorage(t, SchemaCapabilities{})
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM words WHERE user_id = $1 ORDER BY created_at ASC`)).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(wordCols).
			AddRow("w1", testUserID, "run", nil, []byte(`"just a string"`), nil, now).
			AddRow("w2", testUserID, "walk", nil, []byte(`[null,1]`), nil, now).
			AddRow("w3", testUserID, "jump", nil, []byte(`["ok"]`), nil, now))

	words, err := s.ListWords(context.Background(), testUserID, nil)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Nil(t, words[0].Examples)
	assert.Equal(t, models.Examples{models.OpaqueExample("null"), models.OpaqueExample("1")}, words[1].Examples)
	assert.Equal(t, models.Examples{models.LegacyExample("ok")}, words[2].Examples)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListWords_DBError(t *testing.T) {
	s, mock := newMockStorage(t, SchemaCapabilities{})

	mock.ExpectQuery("SELECT .* FROM words").
		WithArgs(testUserID).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure})

	_, err := s.ListWords(context.Background(), testUserID, nil)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "storage.ListWords", se.Op)
	assert.Equal(t, KindTransient, se.Kind)
}

func TestCountWords(t *testing.T) {
	s, mock := newMockStorage(t, SchemaCapabilities{})

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM words WHERE user_id = $1`)).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountWords(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestCreateWord(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO words").
		WithArgs(testUserID, "run", "koşmak").
		WillReturnRows(sqlmock.NewRows(wordCols).AddRow("w1", testUserID, "run", "koşmak", nil, nil, now))

	w, err := s.CreateWord(context.Background(), testUserID, "run", "koşmak")
	require.NoError(t, err)
	assert.Equal(t, "w1", w.ID)
	assert.Equal(t, now, w.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWordByText_NotFound(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())

	mock.ExpectQuery("SELECT .* FROM words\\s+WHERE user_id = \\$1 AND word = \\$2").
		WithArgs(testUserID, "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.FindWordByText(context.Background(), testUserID, "ghost")
	assert.True(t, IsNotFound(err))
}

func TestUpdateWordExamples(t *testing.T) {
	examples := models.Examples{models.StructuredExample{Sentence: "I run", Translation: "Koşarım"}}

	t.Run("ok", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectExec("UPDATE words SET examples").
			WithArgs(`[{"sentence":"I run","translation":"Koşarım"}]`, "w1", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateWordExamples(context.Background(), testUserID, "w1", examples))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("чужое слово", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectExec("UPDATE words SET examples").
			WithArgs(sqlmock.AnyArg(), "w1", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateWordExamples(context.Background(), testUserID, "w1", examples)
		assert.True(t, IsNotFound(err))
	})
}

func TestSetWordGroup(t *testing.T) {
	t.Run("нет колонки group_id", func(t *testing.T) {
		s, mock := newMockStorage(t, SchemaCapabilities{HasGroups: true})

		_, err := s.SetWordGroup(context.Background(), testUserID, "w1", nil)
		assert.True(t, IsSchemaMissing(err))
		assert.ErrorIs(t, err, ErrCapabilityMissing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("снятие группы", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectQuery("UPDATE words SET group_id = \\$1").
			WithArgs(nil, "w1", testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "word", "meaning", "group_id"}).
				AddRow("w1", "run", "koşmak", nil))

		a, err := s.SetWordGroup(context.Background(), testUserID, "w1", nil)
		require.NoError(t, err)
		assert.Equal(t, "w1", a.ID)
		assert.Nil(t, a.GroupID)
	})
}

func TestDeleteGroup(t *testing.T) {
	t.Run("обнуляет group_id и удаляет группу", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE words SET group_id = NULL").
			WithArgs("g1", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM word_groups").
			WithArgs("g1", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteGroup(context.Background(), testUserID, "g1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("без колонки group_id", func(t *testing.T) {
		s, mock := newMockStorage(t, SchemaCapabilities{HasGroups: true})
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM word_groups").
			WithArgs("g1", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.DeleteGroup(context.Background(), testUserID, "g1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("чужая группа откатывается", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE words SET group_id = NULL").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM word_groups").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.DeleteGroup(context.Background(), testUserID, "g1")
		assert.True(t, IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListGroups_NoTable(t *testing.T) {
	s, _ := newMockStorage(t, SchemaCapabilities{})

	_, err := s.ListGroups(context.Background(), testUserID)
	assert.True(t, IsSchemaMissing(err))
}

func TestGetUserPlan(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())
	now := time.Now().UTC()
	expires := now.Add(24 * time.Hour)

	mock.ExpectQuery("FROM user_plans up\\s+JOIN plans p").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "plan_id", "created_at", "expires_at",
			"id", "name", "display_name", "max_words", "can_export", "can_use_groups",
			"can_access_exercises", "price", "currency", "created_at",
		}).AddRow(testUserID, "p-pro", now, expires,
			"p-pro", "pro", "Pro", 1000, true, true, false, 4.99, "USD", now))

	a, err := s.GetUserPlan(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, a.Plan)
	assert.Equal(t, "pro", a.Plan.Name)
	assert.Equal(t, 1000, a.Plan.MaxWords)
	assert.True(t, a.Plan.CanExport)
	assert.Equal(t, expires, *a.ExpiresAt)
}

func TestGetUserPlan_NoTable(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())

	mock.ExpectQuery("FROM user_plans").
		WithArgs(testUserID).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "user_plans" does not exist`})

	_, err := s.GetUserPlan(context.Background(), testUserID)
	assert.True(t, IsSchemaMissing(err))
}

func TestUpdatePlan(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())
	maxWords := 500
	canExport := true

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE plans SET max_words = $1, can_export = $2 WHERE id = $3 RETURNING`)).
		WithArgs(maxWords, canExport, "p1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "display_name", "max_words", "can_export", "can_use_groups",
			"can_access_exercises", "price", "currency", "created_at",
		}).AddRow("p1", "pro", "Pro", 500, true, true, false, 4.99, "USD", time.Now()))

	p, err := s.UpdatePlan(context.Background(), "p1", models.PlanUpdate{MaxWords: &maxWords, CanExport: &canExport})
	require.NoError(t, err)
	assert.Equal(t, 500, p.MaxWords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUserPlan(t *testing.T) {
	s, mock := newMockStorage(t, FullSchema())
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO user_plans .* ON CONFLICT \\(user_id\\)").
		WithArgs(testUserID, "p1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "plan_id", "created_at", "expires_at"}).
			AddRow(testUserID, "p1", now, nil))

	a, err := s.UpsertUserPlan(context.Background(), testUserID, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "p1", a.PlanID)
	assert.Nil(t, a.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRole(t *testing.T) {
	t.Run("таблицы ролей нет", func(t *testing.T) {
		s, _ := newMockStorage(t, SchemaCapabilities{})
		ok, err := s.HasRole(context.Background(), testUserID, "admin")
		assert.False(t, ok)
		assert.True(t, IsSchemaMissing(err))
	})

	t.Run("админ", func(t *testing.T) {
		s, mock := newMockStorage(t, FullSchema())
		mock.ExpectQuery("SELECT EXISTS \\(SELECT 1 FROM user_roles").
			WithArgs(testUserID, "admin").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := s.HasRole(context.Background(), testUserID, "admin")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
