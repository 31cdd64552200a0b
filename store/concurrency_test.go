package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/todo-api/auth"
	"github.com/Skryldev/todo-api/config"
	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/migrations"
	"github.com/Skryldev/todo-api/models"
	"github.com/Skryldev/todo-api/store"
)

// openFileDB opens the default on-disk SQLite database in a temp dir with a
// multi-connection pool, the way the server runs out of the box.
func openFileDB(t *testing.T) *db.DB {
	t.Helper()
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	d, err := db.Open(db.Config{
		DSN:          cfg.DatabaseURL,
		DriverName:   cfg.DBDriver,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := migrations.UpWithInstance(d.Raw(), d.Driver().Dialect()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestConcurrentSessions_FileBackedPool(t *testing.T) {
	d := openFileDB(t)
	if got := d.Stats().MaxOpenConnections; got < 2 {
		t.Fatalf("expected a multi-connection pool, got %d", got)
	}
	users := store.NewUsers(d, auth.NewHasher(bcrypt.MinCost))
	todos := store.NewTodos(d)
	ctx := context.Background()

	const seeded = 20
	for i := 0; i < seeded; i++ {
		if _, err := users.Create(ctx, "Seed", fmt.Sprintf("seed%d@x.io", i), "pw"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	const workers = 40
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				// Existing account: login only.
				if _, err := users.Authenticate(ctx, fmt.Sprintf("seed%d@x.io", i/2), "pw"); err != nil {
					errs <- fmt.Errorf("login seed%d: %w", i/2, err)
				}
				return
			}

			email := fmt.Sprintf("new%d@x.io", i)
			u, err := users.Create(ctx, "New", email, "pw")
			if err != nil {
				errs <- fmt.Errorf("register %s: %w", email, err)
				return
			}
			if _, err := users.Authenticate(ctx, email, "pw"); err != nil {
				errs <- fmt.Errorf("login %s: %w", email, err)
				return
			}
			todo, err := todos.Create(ctx, u.ID, models.CreateTodoParams{Title: "t"})
			if err != nil {
				errs <- fmt.Errorf("create todo for %s: %w", email, err)
				return
			}
			if _, err := todos.SetCompleted(ctx, todo.ID, u.ID, true); err != nil {
				errs <- fmt.Errorf("update todo for %s: %w", email, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if errors.Is(err, store.ErrStorage) {
			t.Errorf("storage fault under concurrency: %v", err)
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}

	var n int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM todos WHERE completed`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != workers/2 {
		t.Fatalf("expected %d completed todos, got %d", workers/2, n)
	}
}
