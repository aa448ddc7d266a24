package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrimonio-app/patrimonio/internal/platform/db"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpdateRole(ctx context.Context, userID int64, role rbac.Role) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT id, username, password_hash, role, is_active, created_at, updated_at FROM users WHERE username = $1`
	var (
		user User
		role string
	)
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if user.Role, err = rbac.ParseRole(role); err != nil {
		return nil, fmt.Errorf("auth: user %s: %w", username, err)
	}
	return &user, nil
}

// CreateUser inserts a new account.
func (r *PGRepository) CreateUser(ctx context.Context, user User) (*User, error) {
	const query = `INSERT INTO users (username, password_hash, role, is_active) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Role.String(), user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, db.ConstraintUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// UpdateRole stores a new role for userID.
func (r *PGRepository) UpdateRole(ctx context.Context, userID int64, role rbac.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, userID, role.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
