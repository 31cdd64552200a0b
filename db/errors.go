package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("todoapi/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("todoapi/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("todoapi/db: foreign key violation")

	// ErrDeadlock is returned on deadlocks and, for SQLite, on a busy or
	// locked database. Both are worth retrying.
	ErrDeadlock = errors.New("todoapi/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline.
	ErrTimeout = errors.New("todoapi/db: query timeout")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("todoapi/db: check constraint violation")

	// ErrConnectionFailed is returned when the driver cannot reach the server.
	ErrConnectionFailed = errors.New("todoapi/db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError — rich error type preserving original driver error
// ─────────────────────────────────────────────────────────────────────────────

// DBError pairs a sentinel with the original driver error. errors.Is matches
// the sentinel; errors.As/Unwrap reach the driver error for logging.
type DBError struct {
	// Sentinel is one of the package-level Err* variables.
	Sentinel error
	// Cause is the original driver error.
	Cause error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package's sentinel errors.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc is a convenience adapter from a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles every driver the service can be configured
// with: lib/pq, pgx and go-sqlite3.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

// MapError applies the default mapping. Repositories use it for errors that
// surface from *sql.Rows, which the DB and Tx helpers never see.
func MapError(err error) error { return defaultMap(err) }

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	// Already mapped; do not double-wrap.
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := mapByPGCode(string(pqErr.Code), err); mapped != nil {
			return mapped
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := mapByPGCode(pgErr.Code, err); mapped != nil {
			return mapped
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if mapped := mapSQLiteError(liteErr, err); mapped != nil {
			return mapped
		}
	}

	return err
}

// PostgreSQL SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code string, cause error) error {
	switch code {
	case "23505": // unique_violation
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case "23503": // foreign_key_violation
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case "23514": // check_violation
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause}
	case "40P01", "40001": // deadlock_detected, serialization_failure
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case "57014": // query_canceled (statement_timeout)
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return nil
}

func mapSQLiteError(e sqlite3.Error, cause error) error {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case sqlite3.ErrConstraintForeignKey:
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case sqlite3.ErrConstraintCheck:
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause}
	}
	switch e.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	}
	return nil
}
