package db

import (
	"fmt"
	"strings"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver describes what the service needs to know about a database/sql driver
// beyond its name: which SQL dialect its schema migrations are written in and
// how to turn a connection DSN into a golang-migrate database URL.
//
// Every dialect the service supports accepts $n placeholders and RETURNING,
// which is why MySQL is not among them.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "pgx", "sqlite3".
	Name() string

	// Dialect names the migrations directory: "postgres" or "sqlite3".
	Dialect() string

	// MigrateURL converts dsn into a URL understood by golang-migrate.
	MigrateURL(dsn string) (string, error)

	// ConnDSN returns the DSN actually passed to sql.Open, with any
	// connection parameters the service depends on filled in.
	ConnDSN(dsn string) string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the registry.
// Panics if a driver with the same name is already registered.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("todoapi/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name or an error.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("todoapi/db: driver %q not registered", name)
	}
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq and pgx)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver covers both PostgreSQL drivers; lib/pq registers itself as
// "postgres" and pgx/v5/stdlib as "pgx".
type PostgresDriver struct {
	SQLName string
}

func (d PostgresDriver) Name() string  { return d.SQLName }
func (PostgresDriver) Dialect() string { return "postgres" }

func (PostgresDriver) ConnDSN(dsn string) string { return dsn }

func (PostgresDriver) MigrateURL(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}
	return "", fmt.Errorf("todoapi/db: migrations need a URL-form postgres DSN (postgres://...)")
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the mattn/go-sqlite3 adapter used for development and tests.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string    { return "sqlite3" }
func (SQLiteDriver) Dialect() string { return "sqlite3" }

// sqliteParams are added to a SQLite DSN unless already present. Every store
// operation reads then writes inside one transaction; a deferred BEGIN lets two
// of them deadlock on the lock upgrade, which SQLite reports as SQLITE_BUSY
// without waiting. BEGIN IMMEDIATE takes the write lock up front, so
// concurrent writers queue on _busy_timeout instead.
var sqliteParams = []struct{ key, value string }{
	{"_txlock", "immediate"},
	{"_busy_timeout", "5000"},
}

func (SQLiteDriver) ConnDSN(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	present := make(map[string]bool)
	for _, kv := range strings.Split(query, "&") {
		if k, _, _ := strings.Cut(kv, "="); k != "" {
			present[k] = true
		}
	}
	params := query
	for _, p := range sqliteParams {
		if present[p.key] {
			continue
		}
		if params != "" {
			params += "&"
		}
		params += p.key + "=" + p.value
	}
	return base + "?" + params
}

func (SQLiteDriver) MigrateURL(dsn string) (string, error) {
	if strings.HasPrefix(dsn, ":memory:") {
		return "", fmt.Errorf("todoapi/db: in-memory sqlite must be migrated in-process")
	}
	return "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
}

func init() {
	RegisterDriver(PostgresDriver{SQLName: "postgres"})
	RegisterDriver(PostgresDriver{SQLName: "pgx"})
	RegisterDriver(SQLiteDriver{})
}
