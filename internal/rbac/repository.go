package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore reads user roles from PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PGStore.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// UserRole loads the role and active flag of a user.
func (s *PGStore) UserRole(ctx context.Context, userID int64) (UserRole, error) {
	var (
		ur   UserRole
		role string
	)
	err := s.pool.QueryRow(ctx, `SELECT id, username, role, is_active FROM users WHERE id = $1`, userID).
		Scan(&ur.UserID, &ur.Username, &role, &ur.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRole{}, ErrNotFound
		}
		return UserRole{}, fmt.Errorf("rbac: load user role: %w", err)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return UserRole{}, fmt.Errorf("rbac: user %d role %q: %w", userID, role, err)
	}
	ur.Role = parsed
	return ur, nil
}

var _ Store = (*PGStore)(nil)
