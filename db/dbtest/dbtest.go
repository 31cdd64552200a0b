// Package dbtest opens throwaway SQLite databases carrying the real schema.
package dbtest

import (
	"testing"

	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/migrations"
)

// Open returns an in-memory SQLite database migrated to the latest version.
// The pool is pinned to one connection: every new connection to ":memory:"
// would otherwise see its own empty database.
func Open(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()

	d, err := db.Open(db.Config{
		DSN:          "file::memory:?_foreign_keys=on",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Hooks:        hooks,
	})
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := migrations.UpWithInstance(d.Raw(), d.Driver().Dialect()); err != nil {
		t.Fatalf("dbtest: migrate: %v", err)
	}
	return d
}
