package assets

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrimonio-app/patrimonio/internal/platform/db"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

const idempotencyModule = "assets.create"

// Repository provides asset persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Asset, error)
	PatrimonioExists(ctx context.Context, patrimonio string) (bool, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Asset, int, error)
}

// TxRepository holds the writes performed inside one create transaction.
type TxRepository interface {
	ClaimIdempotencyKey(ctx context.Context, key string) error
	Insert(ctx context.Context, asset Asset) (*Asset, error)
	RecordAudit(ctx context.Context, log shared.AuditLog) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ClaimIdempotencyKey(ctx context.Context, key string) error {
	return shared.NewIdempotencyStore(r.db).CheckAndInsert(ctx, key, idempotencyModule)
}

func (r *repository) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	return shared.NewAuditLogger(r.db).Record(ctx, log)
}

// Insert stores the asset row and its field values in order.
func (r *repository) Insert(ctx context.Context, asset Asset) (*Asset, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO assets (patrimonio, category_id, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
		asset.Patrimonio, asset.CategoryID, asset.OwnerID,
	).Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, db.ConstraintAssetPatrimonio):
			return nil, ErrPatrimonioTaken
		case db.IsForeignKeyViolation(err, db.ConstraintAssetCategory):
			return nil, ErrCategoryMissing
		}
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	if len(asset.FieldValues) > 0 {
		batch := &pgx.Batch{}
		for i, fv := range asset.FieldValues {
			batch.Queue(`INSERT INTO asset_field_values (asset_id, position, field, value) VALUES ($1, $2, $3, $4)`,
				asset.ID, i, fv.Field, fv.Value)
		}
		if err := r.sendBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("insert field values: %w", err)
		}
	} else {
		asset.FieldValues = []FieldValue{}
	}
	return &asset, nil
}

func (r *repository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := r.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func (r *repository) Get(ctx context.Context, id int64) (*Asset, error) {
	var a Asset
	err := r.db.QueryRow(ctx,
		`SELECT id, patrimonio, category_id, owner_id, created_at FROM assets WHERE id = $1`, id,
	).Scan(&a.ID, &a.Patrimonio, &a.CategoryID, &a.OwnerID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	values, err := r.fieldValues(ctx, []int64{a.ID})
	if err != nil {
		return nil, err
	}
	a.FieldValues = values[a.ID]
	if a.FieldValues == nil {
		a.FieldValues = []FieldValue{}
	}
	return &a, nil
}

func (r *repository) PatrimonioExists(ctx context.Context, patrimonio string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assets WHERE patrimonio = $1)`, patrimonio).Scan(&exists)
	return exists, err
}

// List uses a dynamic query for the optional filters.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Asset, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND patrimonio ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND category_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, patrimonio, category_id, owner_id, created_at FROM assets` + where +
		` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	args = append(args, filters.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, shared.Offset(filters.Page, filters.Limit))
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Asset{}
	ids := []int64{}
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Patrimonio, &a.CategoryID, &a.OwnerID, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	values, err := r.fieldValues(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].FieldValues = values[items[i].ID]
		if items[i].FieldValues == nil {
			items[i].FieldValues = []FieldValue{}
		}
	}
	return items, total, nil
}

func (r *repository) fieldValues(ctx context.Context, ids []int64) (map[int64][]FieldValue, error) {
	out := make(map[int64][]FieldValue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT asset_id, field, value FROM asset_field_values WHERE asset_id = ANY($1) ORDER BY asset_id, position`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id int64
			fv FieldValue
		)
		if err := rows.Scan(&id, &fv.Field, &fv.Value); err != nil {
			return nil, err
		}
		out[id] = append(out[id], fv)
	}
	return out, rows.Err()
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "patrimonio":
		return "patrimonio " + dir
	default:
		return "created_at " + dir + ", id " + dir
	}
}
