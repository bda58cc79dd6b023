package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind — категория ошибки хранилища.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindSchemaMissing
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindSchemaMissing:
		return "schema_missing"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound — строка не найдена или принадлежит другому пользователю.
	ErrNotFound = errors.New("row not found")
	// ErrCapabilityMissing — часть схемы отсутствует по данным SchemaCapabilities.
	ErrCapabilityMissing = errors.New("schema capability missing")
)

// Error — ошибка хранилища с категорией.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf возвращает категорию ошибки. Для ошибок не из хранилища категория
// определяется по SQLSTATE и стандартным ошибкам.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return classify(err)
}

// IsNotFound сообщает, что строка не найдена.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsSchemaMissing сообщает, что таблица или колонка отсутствует.
func IsSchemaMissing(err error) bool { return KindOf(err) == KindSchemaMissing }

// IsTransient сообщает о временной ошибке соединения.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

func classify(err error) Kind {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrCapabilityMissing) {
		return KindSchemaMissing
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return KindTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UndefinedTable,
			pgErr.Code == pgerrcode.UndefinedColumn,
			pgErr.Code == pgerrcode.InvalidSchemaName:
			return KindSchemaMissing
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsTransactionRollback(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code):
			return KindTransient
		}
		return KindUnknown
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return KindTransient
	}
	return KindUnknown
}

// wrap оборачивает ошибку операции op с категорией. Уже категоризированные
// ошибки сохраняют свою категорию.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

func missing(op, what string) error {
	return &Error{Op: op, Kind: KindSchemaMissing, Err: fmt.Errorf("%w: %s", ErrCapabilityMissing, what)}
}
