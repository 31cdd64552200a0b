// Package migrations embeds the versioned schema of the todo service and runs
// it through golang-migrate. There is one directory per SQL dialect; the
// dialect name is the one reported by db.Driver.Dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite3/*.sql
var files embed.FS

// Source returns the embedded migration source for dialect.
func Source(dialect string) (source.Driver, error) {
	switch dialect {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("migrations: source %s: %w", dialect, err)
	}
	return src, nil
}

// New builds a migrate instance that talks to databaseURL through its own
// connection. The caller owns the instance and must Close it.
func New(databaseURL, dialect string, logger *slog.Logger) (*migrate.Migrate, error) {
	src, err := Source(dialect)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	m.Log = NewLogger(logger)
	return m, nil
}

// Up applies every pending migration to databaseURL. An up-to-date schema is
// not an error.
func Up(databaseURL, dialect string, logger *slog.Logger) error {
	m, err := New(databaseURL, dialect, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// UpWithInstance applies every pending migration over an already open
// connection pool. It is the only way to migrate an in-memory SQLite database.
//
// The migrate instance is deliberately not closed: closing it would close sqldb.
func UpWithInstance(sqldb *sql.DB, dialect string) error {
	src, err := Source(dialect)
	if err != nil {
		return err
	}

	var drv database.Driver
	switch dialect {
	case "sqlite3":
		drv, err = migratesqlite.WithInstance(sqldb, &migratesqlite.Config{})
	case "postgres":
		drv, err = migratepg.WithInstance(sqldb, &migratepg.Config{})
	}
	if err != nil {
		return fmt.Errorf("migrations: driver %s: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, drv)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Logger adapts slog to migrate.Logger.
// ─────────────────────────────────────────────────────────────────────────────

type Logger struct {
	l       *slog.Logger
	verbose bool
}

// NewLogger returns a migrate.Logger writing through l (slog.Default if nil).
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l, verbose: l.Enabled(context.Background(), slog.LevelDebug)}
}

func (l *Logger) Printf(format string, v ...any) {
	l.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *Logger) Verbose() bool { return l.verbose }
