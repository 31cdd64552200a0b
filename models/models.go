// Package models holds the row types of the todo service and the parameter
// types accepted by the repositories.
package models

import "time"

// User represents a row in the "users" table.
// PasswordHash never leaves the process: it is excluded from JSON.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"-"`
}

// CreateUserParams holds the fields required to insert a user. The password
// has already been hashed by the caller.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// Todo represents a row in the "todos" table.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      int64     `json:"user_id"`
}

// CreateTodoParams holds the fields a client may set on a new todo.
// The owner is passed separately and never taken from client input.
type CreateTodoParams struct {
	Title       string
	Description *string
	Completed   bool
}

// UpdateTodoParams holds fields that can be updated. All fields are pointers
// so callers only set what needs changing; the repository builds the explicit
// SQL accordingly.
type UpdateTodoParams struct {
	Title       *string
	Description *string
	Completed   *bool
}
