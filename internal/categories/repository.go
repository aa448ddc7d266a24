package categories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrimonio-app/patrimonio/internal/shared"
)

// Repository persists categories.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, category Category) (Category, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, owner_id, created_at FROM categories` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	args = append(args, filters.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, shared.Offset(filters.Page, filters.Limit))
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, owner_id, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, owner_id) VALUES ($1, $2) RETURNING id, created_at`,
		category.Name, category.OwnerID,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return Category{}, err
	}
	return category, nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "created_at":
		return "created_at " + dir + ", id " + dir
	default:
		return "name " + dir + ", id " + dir
	}
}
