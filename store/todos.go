package store

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/models"
	"github.com/Skryldev/todo-api/repo"
)

const (
	// DefaultLimit is the page size used when the caller passes none.
	DefaultLimit = 100
	// MaxLimit bounds a single page.
	MaxLimit = 1000

	maxTitleLen       = 255
	maxDescriptionLen = 1000
)

// Todos is the ownership-scoped todo store. Every operation takes the id of
// the authenticated owner; todos of other owners behave as if absent.
type Todos struct {
	db    *db.DB
	retry db.RetryConfig
}

// NewTodos returns a todo store over d.
func NewTodos(d *db.DB) *Todos {
	return &Todos{db: d, retry: db.DefaultRetry}
}

func (s *Todos) run(ctx context.Context, op string, fn func(repo.TodoRepository) error) error {
	err := db.WithRetry(ctx, s.retry, func() error {
		return s.db.ExecTx(ctx, func(tx *db.Tx) error {
			return fn(repo.NewTodoRepo(tx))
		})
	})
	return mapErr(op, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// List returns one page of the owner's todos in creation order. A limit of
// zero selects DefaultLimit. The result is never nil.
func (s *Todos) List(ctx context.Context, ownerID int64, offset, limit int) ([]models.Todo, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	switch {
	case offset < 0:
		return nil, &ValidationError{Field: "offset", Reason: "must not be negative"}
	case limit < 0 || limit > MaxLimit:
		return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and 1000"}
	}

	var todos []models.Todo
	err := s.run(ctx, "list todos", func(r repo.TodoRepository) (err error) {
		todos, err = r.List(ctx, ownerID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Get returns ErrNotFound when the todo is absent or owned by someone else.
func (s *Todos) Get(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	var todo *models.Todo
	err := s.run(ctx, "get todo", func(r repo.TodoRepository) (err error) {
		todo, err = r.Get(ctx, id, ownerID)
		return err
	})
	return todo, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create stores a new todo for ownerID.
func (s *Todos) Create(ctx context.Context, ownerID int64, params models.CreateTodoParams) (*models.Todo, error) {
	if err := validateTitle(params.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(params.Description); err != nil {
		return nil, err
	}

	var todo *models.Todo
	err := s.run(ctx, "create todo", func(r repo.TodoRepository) (err error) {
		todo, err = r.Insert(ctx, ownerID, params)
		return err
	})
	return todo, err
}

// Update overwrites the fields set in params and refreshes updated_at.
// Returns ErrNotFound when the todo is absent or owned by someone else.
func (s *Todos) Update(ctx context.Context, id, ownerID int64, params models.UpdateTodoParams) (*models.Todo, error) {
	if params.Title != nil {
		if err := validateTitle(*params.Title); err != nil {
			return nil, err
		}
	}
	if err := validateDescription(params.Description); err != nil {
		return nil, err
	}

	var todo *models.Todo
	err := s.run(ctx, "update todo", func(r repo.TodoRepository) (err error) {
		todo, err = r.Update(ctx, id, ownerID, params)
		return err
	})
	return todo, err
}

// SetCompleted sets only the completion flag.
func (s *Todos) SetCompleted(ctx context.Context, id, ownerID int64, completed bool) (*models.Todo, error) {
	return s.Update(ctx, id, ownerID, models.UpdateTodoParams{Completed: &completed})
}

// Delete reports whether a todo owned by ownerID was removed. Deleting the
// same id twice yields true then false.
func (s *Todos) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	var deleted bool
	err := s.run(ctx, "delete todo", func(r repo.TodoRepository) (err error) {
		deleted, err = r.Delete(ctx, id, ownerID)
		return err
	})
	return deleted, err
}

// DeleteAll removes every todo of ownerID and returns how many were removed.
func (s *Todos) DeleteAll(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := s.run(ctx, "delete all todos", func(r repo.TodoRepository) (err error) {
		n, err = r.DeleteAllByUser(ctx, ownerID)
		return err
	})
	return n, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func validateTitle(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	case utf8.RuneCountInString(title) > maxTitleLen:
		return &ValidationError{Field: "title", Reason: "must be at most 255 characters"}
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "must be at most 1000 characters"}
	}
	return nil
}
