// Package auth implements the administrative session guard: bcrypt-verified
// login, opaque session tokens with an absolute expiry, and a periodic sweep
// of dead sessions.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords,
	// so login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers missing, unknown, and expired sessions uniformly.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when an admin record does not exist.
	ErrNotFound = errors.New("admin not found")
)

// Admin is an administrative account. Exactly one is seeded at process start
// if none exists.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Session is an opaque, unguessable token bound to one admin with an absolute
// expiry. A session identifier is never reused.
type Session struct {
	ID        string
	AdminID   int64
	ExpiresAt time.Time
}

// AdminRepository defines persistence operations for admin accounts.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id int64) (*Admin, error)
	Create(ctx context.Context, a *Admin) error
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
