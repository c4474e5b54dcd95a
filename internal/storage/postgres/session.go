package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
)

const (
	createSessionSQL = `INSERT INTO sessions (id, admin_id, expires_at) VALUES ($1, $2, $3)`

	getSessionSQL = `SELECT id, admin_id, expires_at FROM sessions WHERE id = $1`

	deleteSessionSQL = `DELETE FROM sessions WHERE id = $1`

	deleteExpiredSessionsSQL = `DELETE FROM sessions WHERE expires_at <= $1`
)

var _ auth.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements auth.SessionRepository backed by PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a session token.
func (r *SessionRepository) Create(ctx context.Context, s *auth.Session) error {
	_, err := r.pool.Exec(ctx, createSessionSQL, s.ID, s.AdminID, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Get returns the session with the given token.
func (r *SessionRepository) Get(ctx context.Context, id string) (*auth.Session, error) {
	rows, err := r.pool.Query(ctx, getSessionSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSession)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUnauthorized
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, deleteSessionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions that expired at or before now and
// reports how many were swept.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteExpiredSessionsSQL, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.CollectableRow) (auth.Session, error) {
	var s auth.Session
	err := row.Scan(&s.ID, &s.AdminID, &s.ExpiresAt)
	return s, err
}
