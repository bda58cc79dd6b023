// Package storage реализует доступ к строкам словаря в PostgreSQL: слова, группы,
// каталог планов, назначения планов и роли пользователей.
//
// Каждый запрос к данным пользователя фильтруется по user_id. Необязательные части
// схемы (колонка words.group_id, таблицы групп, планов и ролей) описываются
// SchemaCapabilities, которые определяются один раз при старте.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// SchemaCapabilities описывает, какие необязательные части схемы есть в базе.
type SchemaCapabilities struct {
	HasGroupID   bool `json:"has_group_id"`
	HasGroups    bool `json:"has_groups"`
	HasPlans     bool `json:"has_plans"`
	HasUserPlans bool `json:"has_user_plans"`
	HasRoles     bool `json:"has_roles"`
}

// FullSchema возвращает возможности полностью мигрированной базы.
func FullSchema() SchemaCapabilities {
	return SchemaCapabilities{HasGroupID: true, HasGroups: true, HasPlans: true, HasUserPlans: true, HasRoles: true}
}

// Options параметры хранилища.
type Options struct {
	Capabilities SchemaCapabilities
	// Log получает предупреждения о повреждённых строках. nil — предупреждения отбрасываются.
	Log *slog.Logger
}

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB   *sql.DB
	caps SchemaCapabilities
	log  *slog.Logger
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string, opts Options) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithDB(db, opts), nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(db *sql.DB, opts Options) *Storage {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Storage{DB: db, caps: opts.Capabilities, log: log}
}

// Capabilities возвращает возможности схемы, с которыми работает хранилище.
func (s *Storage) Capabilities() SchemaCapabilities {
	return s.caps
}

// SetCapabilities заменяет возможности схемы. Вызывается только при старте, до обработки запросов.
func (s *Storage) SetCapabilities(caps SchemaCapabilities) {
	s.caps = caps
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}

const probeQuery = `SELECT
	EXISTS (SELECT 1 FROM information_schema.columns
	        WHERE table_schema = current_schema() AND table_name = 'words' AND column_name = 'group_id'),
	EXISTS (SELECT 1 FROM information_schema.tables
	        WHERE table_schema = current_schema() AND table_name = 'word_groups'),
	EXISTS (SELECT 1 FROM information_schema.tables
	        WHERE table_schema = current_schema() AND table_name = 'plans'),
	EXISTS (SELECT 1 FROM information_schema.tables
	        WHERE table_schema = current_schema() AND table_name = 'user_plans'),
	EXISTS (SELECT 1 FROM information_schema.tables
	        WHERE table_schema = current_schema() AND table_name = 'user_roles')`

// ProbeSchema определяет возможности схемы по information_schema.
func ProbeSchema(ctx context.Context, db *sql.DB) (SchemaCapabilities, error) {
	const op = "storage.ProbeSchema"

	var caps SchemaCapabilities
	err := db.QueryRowContext(ctx, probeQuery).
		Scan(&caps.HasGroupID, &caps.HasGroups, &caps.HasPlans, &caps.HasUserPlans, &caps.HasRoles)
	if err != nil {
		return SchemaCapabilities{}, wrap(op, err)
	}
	return caps, nil
}
