// Package repo contains the SQL of the todo service. Every todo statement
// carries the owner in its WHERE clause, so a row owned by someone else is
// indistinguishable from a missing one.
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// TodoRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// TodoRepository defines the ownership-scoped persistence operations on todos.
type TodoRepository interface {
	List(ctx context.Context, ownerID int64, limit, offset int) ([]models.Todo, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Todo, error)
	Insert(ctx context.Context, ownerID int64, params models.CreateTodoParams) (*models.Todo, error)
	Update(ctx context.Context, id, ownerID int64, params models.UpdateTodoParams) (*models.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	DeleteAllByUser(ctx context.Context, ownerID int64) (int64, error)
}

type todoRepo struct {
	q db.Querier
}

// NewTodoRepo returns a TodoRepository backed by q.
func NewTodoRepo(q db.Querier) TodoRepository {
	return &todoRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

// Placeholders must first appear in ascending order: go-sqlite3 numbers $n
// parameters by first appearance.

const todoColumns = `id, title, description, completed, created_at, updated_at, user_id`

const (
	sqlListTodos = `
		SELECT ` + todoColumns + `
		FROM   todos
		WHERE  user_id = $1
		ORDER  BY id
		LIMIT  $2 OFFSET $3`

	sqlGetTodo = `
		SELECT ` + todoColumns + `
		FROM   todos
		WHERE  id = $1 AND user_id = $2
		LIMIT  1`

	sqlInsertTodo = `
		INSERT INTO todos (title, description, completed, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $4, $5)
		RETURNING ` + todoColumns

	sqlDeleteTodo = `
		DELETE FROM todos WHERE id = $1 AND user_id = $2`

	sqlDeleteTodosByUser = `
		DELETE FROM todos WHERE user_id = $1`
)

// List returns one page of the owner's todos in creation order. The result is
// never nil.
func (r *todoRepo) List(ctx context.Context, ownerID int64, limit, offset int) ([]models.Todo, error) {
	rows, err := r.q.Query(ctx, sqlListTodos, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID); err != nil {
			return nil, fmt.Errorf("repo/todo: scan: %w", db.MapError(err))
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return todos, nil
}

// Get returns db.ErrNotFound when the todo is absent or not owned by ownerID.
func (r *todoRepo) Get(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	return scanTodo(r.q.QueryRow(ctx, sqlGetTodo, id, ownerID))
}

func (r *todoRepo) Insert(ctx context.Context, ownerID int64, params models.CreateTodoParams) (*models.Todo, error) {
	now := time.Now().UTC()
	row := r.q.QueryRow(ctx, sqlInsertTodo, params.Title, params.Description, params.Completed, now, ownerID)
	return scanTodo(row)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update — partial update with explicit SQL construction
// ─────────────────────────────────────────────────────────────────────────────

// Update applies the non-nil fields of params and always refreshes
// updated_at, even when no field is set. Returns db.ErrNotFound when the todo
// is absent or not owned by ownerID.
func (r *todoRepo) Update(ctx context.Context, id, ownerID int64, params models.UpdateTodoParams) (*models.Todo, error) {
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 6)
	argIdx := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *params.Title)
		argIdx++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *params.Description)
		argIdx++
	}
	if params.Completed != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", argIdx))
		args = append(args, *params.Completed)
		argIdx++
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now().UTC())
	argIdx++

	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
		UPDATE todos
		SET    %s
		WHERE  id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, todoColumns)

	return scanTodo(r.q.QueryRow(ctx, query, args...))
}

// Delete reports whether a todo owned by ownerID was removed.
func (r *todoRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.q.Exec(ctx, sqlDeleteTodo, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllByUser removes every todo of ownerID and returns how many went.
func (r *todoRepo) DeleteAllByUser(ctx context.Context, ownerID int64) (int64, error) {
	res, err := r.q.Exec(ctx, sqlDeleteTodosByUser, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanTodo(row *db.Row) (*models.Todo, error) {
	t := &models.Todo{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
	if err != nil {
		return nil, fmt.Errorf("repo/todo: %w", err)
	}
	return t, nil
}

var _ TodoRepository = (*todoRepo)(nil)
