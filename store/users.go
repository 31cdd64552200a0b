// Package store is the domain layer of the todo service. Each exported
// operation runs as exactly one database transaction, retried on deadlocks,
// and reports failures as the sentinels in errors.go.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skryldev/todo-api/auth"
	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/models"
	"github.com/Skryldev/todo-api/repo"
)

const (
	maxNameLen  = 255
	maxEmailLen = 255
)

// Users registers and authenticates accounts.
type Users struct {
	db     *db.DB
	hasher *auth.Hasher
	retry  db.RetryConfig

	// dummyHash is verified against when the email is unknown, so that case
	// costs the same bcrypt comparison as a wrong password.
	dummyHash string
}

// NewUsers returns a user store over d hashing passwords with h.
func NewUsers(d *db.DB, h *auth.Hasher) *Users {
	dummy, _ := h.Hash("todo-api/dummy-password")
	return &Users{db: d, hasher: h, retry: db.DefaultRetry, dummyHash: dummy}
}

func (s *Users) run(ctx context.Context, op string, fn func(repo.UserRepository) error) error {
	err := db.WithRetry(ctx, s.retry, func() error {
		return s.db.ExecTx(ctx, func(tx *db.Tx) error {
			return fn(repo.NewUserRepo(tx))
		})
	})
	return mapErr(op, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create registers a new account. The email is stored exactly as given and
// compared case-sensitively. Returns ErrDuplicateEmail when it is taken.
func (s *Users) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	// Hashing stays outside the transaction so bcrypt never holds a connection.
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, &StorageError{Op: "create user", Err: err}
	}

	var user *models.User
	err = s.run(ctx, "create user", func(r repo.UserRepository) error {
		_, err := r.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return ErrDuplicateEmail
		case !db.IsNotFound(err):
			return err
		}

		user, err = r.Insert(ctx, models.CreateUserParams{Name: name, Email: email, PasswordHash: digest})
		if db.IsDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func validateRegistration(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case utf8.RuneCountInString(name) > maxNameLen:
		return &ValidationError{Field: "name", Reason: "must be at most 255 characters"}
	case !strings.Contains(email, "@") || strings.TrimSpace(email) != email:
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	case utf8.RuneCountInString(email) > maxEmailLen:
		return &ValidationError{Field: "email", Reason: "must be at most 255 characters"}
	case password == "":
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────────────────

// FindByEmail returns ErrNotFound when no account uses email.
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := s.run(ctx, "find user", func(r repo.UserRepository) (err error) {
		user, err = r.GetByEmail(ctx, email)
		return err
	})
	return user, err
}

// FindByID returns ErrNotFound when no account has id.
func (s *Users) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.run(ctx, "find user", func(r repo.UserRepository) (err error) {
		user, err = r.GetByID(ctx, id)
		return err
	})
	return user, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Authenticate
// ─────────────────────────────────────────────────────────────────────────────

// Authenticate checks a password and records the login. An unknown email and
// a wrong password both yield ErrInvalidCredentials, and both cost one bcrypt
// comparison. The comparison runs between the lookup and the login update so
// that no transaction is open while bcrypt works.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var found *models.User
	err := s.run(ctx, "authenticate", func(r repo.UserRepository) (err error) {
		found, err = r.GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, found.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	var user *models.User
	err = s.run(ctx, "record login", func(r repo.UserRepository) (err error) {
		user, err = r.TouchLogin(ctx, found.ID, time.Now())
		return err
	})
	if errors.Is(err, ErrNotFound) {
		// Deleted between the two steps.
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
