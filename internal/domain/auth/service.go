package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the original admin accounts were hashed with.
const bcryptCost = 12

// DefaultSessionTTL is how long a freshly issued session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Service issues, validates, and expires admin sessions.
type Service struct {
	admins   AdminRepository
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates an auth Service. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewService(admins AdminRepository, sessions SessionRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		admins:   admins,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Login verifies the credentials and issues a fresh session. Unknown username
// and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, *Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, errors.Wrap(err, "get admin")
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session := &Session{
		ID:        uuid.New().String(),
		AdminID:   admin.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, errors.Wrap(err, "create session")
	}

	return session, admin, nil
}

// Validate resolves a session token to its admin ID. Missing, unknown, and
// expired tokens are rejected uniformly with ErrUnauthorized. An expired row
// is left in place; the periodic sweep removes it.
func (s *Service) Validate(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return 0, ErrUnauthorized
		}
		return 0, errors.Wrap(err, "get session")
	}
	if !s.now().Before(session.ExpiresAt) {
		return 0, ErrUnauthorized
	}

	return session.AdminID, nil
}

// AdminByID returns the admin account behind a validated session.
func (s *Service) AdminByID(ctx context.Context, id int64) (*Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// Logout deletes the session. Deleting an already-absent session is not an
// error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

// SweepExpired deletes all sessions whose expiry has passed and returns how
// many rows were removed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired sessions")
	}
	return n, nil
}

// SeedAdmin creates the initial admin account if none exists. It returns true
// when a new account was created.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, errors.Wrap(err, "check existing admin")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if err := s.admins.Create(ctx, &Admin{Username: username, PasswordHash: hash}); err != nil {
		return false, errors.Wrap(err, "create admin")
	}
	return true, nil
}
