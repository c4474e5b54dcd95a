package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
)

const (
	getAdminByUsernameSQL = `SELECT id, username, password_hash FROM admins WHERE username = $1`

	getAdminByIDSQL = `SELECT id, username, password_hash FROM admins WHERE id = $1`

	createAdminSQL = `INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING
		RETURNING id`
)

var _ auth.AdminRepository = (*AdminRepository)(nil)

// AdminRepository implements auth.AdminRepository backed by PostgreSQL.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns an AdminRepository that uses the given pool.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByUsername returns the admin with the given username.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*auth.Admin, error) {
	rows, err := r.pool.Query(ctx, getAdminByUsernameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("getting admin %q: %w", username, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("getting admin %q: %w", username, err)
	}
	return &a, nil
}

// GetByID returns the admin with the given ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*auth.Admin, error) {
	rows, err := r.pool.Query(ctx, getAdminByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting admin %d: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("getting admin %d: %w", id, err)
	}
	return &a, nil
}

// Create inserts an admin account. Inserting an existing username is a no-op
// so the startup seed is idempotent.
func (r *AdminRepository) Create(ctx context.Context, a *auth.Admin) error {
	err := r.pool.QueryRow(ctx, createAdminSQL, a.Username, a.PasswordHash).Scan(&a.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("creating admin %q: %w", a.Username, err)
	}
	return nil
}

func scanAdmin(row pgx.CollectableRow) (auth.Admin, error) {
	var a auth.Admin
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash)
	return a, err
}
