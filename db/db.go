// Package db is the SQL layer of the todo service: a thin wrapper around
// database/sql that adds context timeouts, statement hooks, unified error
// mapping and one-call transactions. All SQL stays explicit in the callers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is one of the registered drivers: "postgres", "pgx" or "sqlite3".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default query timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// Hooks executed around every statement. nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB — the central type
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	driver Driver
	hooks  hookChain
	errMap ErrorMapper
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Callers are responsible for calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("todoapi/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("todoapi/db: DriverName must not be empty")
	}

	drv, err := LookupDriver(cfg.DriverName)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(drv.Name(), drv.ConnDSN(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("todoapi/db: open: %w", err)
	}

	// Pool tuning
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		sqldb:  sqldb,
		cfg:    cfg,
		driver: drv,
		hooks:  newHookChain(cfg.Hooks),
		errMap: DefaultErrorMapper(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("todoapi/db: ping: %w", err)
	}

	return d, nil
}

// Raw returns the underlying *sql.DB. The migrations package needs it to run
// against an in-process connection.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// Driver returns the registered driver this DB was opened with.
func (d *DB) Driver() Driver { return d.driver }

// Close closes all pooled connections.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Query execution helpers
// ─────────────────────────────────────────────────────────────────────────────

// Exec executes a statement that returns no rows (INSERT, UPDATE, DELETE, DDL).
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows. The caller MUST close the
// returned *sql.Rows. No default timeout is applied here because the rows
// outlive this call; pass a context with a deadline instead.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
// Scan on the returned *Row yields ErrNotFound when no row matches.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.hooks.After(ctx, query, args, time.Since(start), nil) // err unknown until Scan
	return &Row{raw: raw, errMap: d.errMap}
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (d *DB) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row — wraps *sql.Row to translate errors uniformly
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	err := r.raw.Scan(dest...)
	return r.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// WithRetry — resilience helper
// ─────────────────────────────────────────────────────────────────────────────

// RetryConfig controls retry behaviour for transient errors.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryOn decides whether a given error should trigger a retry.
	// Defaults to retrying on ErrDeadlock if nil.
	RetryOn func(error) bool
}

// DefaultRetry retries a transaction twice more on deadlock or SQLITE_BUSY.
var DefaultRetry = RetryConfig{MaxAttempts: 3, Delay: 20 * time.Millisecond}

// WithRetry executes fn, retrying on transient errors per cfg. fn must be
// safe to run again, which holds for a whole ExecTx call since a failed
// transaction is rolled back.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = IsDeadlock
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryOn(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("todoapi/db: all %d attempts failed, last error: %w", attempts, lastErr)
}
