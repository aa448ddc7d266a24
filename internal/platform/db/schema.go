package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Constraint names referenced by repositories when mapping pg errors.
const (
	ConstraintAssetPatrimonio = "assets_patrimonio_key"
	ConstraintAssetCategory   = "assets_category_id_fkey"
	ConstraintUsername        = "users_username_key"
)

// ApplySchema creates missing tables. Statements are idempotent.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("platform/db: apply schema: %w", err)
	}
	return nil
}
