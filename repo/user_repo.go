package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines the persistence operations on the users table.
// Users are never updated except for their login timestamp and never deleted.
type UserRepository interface {
	Insert(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) (*models.User, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// userRepo — concrete implementation
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q.
// q can be a *db.DB or a *db.Tx; both satisfy db.Querier.
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

const userColumns = `id, name, email, password_hash, created_at, updated_at, last_login_at`

const (
	sqlInsertUser = `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING ` + userColumns

	sqlGetUserByID = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  id = $1
		LIMIT  1`

	// Exact, case-sensitive match as stored.
	sqlGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  email = $1
		LIMIT  1`

	sqlTouchLogin = `
		UPDATE users
		SET    last_login_at = $1, updated_at = $1
		WHERE  id = $2
		RETURNING ` + userColumns
)

// Insert creates a user and returns the persisted record including the
// database-assigned id. created_at and updated_at are both set to now.
func (r *userRepo) Insert(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	now := time.Now().UTC()
	row := r.q.QueryRow(ctx, sqlInsertUser, params.Name, params.Email, params.PasswordHash, now)
	return scanUser(row)
}

// GetByID returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByID, id))
}

// GetByEmail returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByEmail, email))
}

// TouchLogin records a successful authentication.
func (r *userRepo) TouchLogin(ctx context.Context, id int64, at time.Time) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlTouchLogin, at.UTC(), id))
}

func scanUser(row *db.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
