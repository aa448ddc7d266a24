package categories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

// Service implements category use cases.
type Service struct {
	repo      Repository
	validator *validator.Validate
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: httpx.NewValidator(), logger: logger}
}

func authorize(caller rbac.Principal, capability rbac.Capability) error {
	if caller.IsZero() {
		return httpx.ErrUnauthorized
	}
	if !caller.Can(capability) {
		return fmt.Errorf("%s: %w", capability, httpx.ErrForbidden)
	}
	return nil
}

// List returns a page of categories.
func (s *Service) List(ctx context.Context, caller rbac.Principal, filters shared.ListFilters) ([]Category, int, error) {
	if err := authorize(caller, rbac.CapCategoryView); err != nil {
		return nil, 0, err
	}
	filters.Page, filters.Limit = shared.NormalizePage(filters.Page, filters.Limit)
	return s.repo.List(ctx, filters)
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, caller rbac.Principal, id int64) (Category, error) {
	if err := authorize(caller, rbac.CapCategoryView); err != nil {
		return Category{}, err
	}
	if id <= 0 {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether a category with id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

// Create stores a category owned by caller.
func (s *Service) Create(ctx context.Context, caller rbac.Principal, req CreateCategoryRequest) (Category, error) {
	if err := authorize(caller, rbac.CapCategoryCreate); err != nil {
		return Category{}, err
	}
	req.Name = httpx.NormalizeText(req.Name)
	fields := httpx.FieldErrors{}
	if err := httpx.ValidateStruct(s.validator, req, fields); err != nil {
		return Category{}, err
	}
	if len(fields) > 0 {
		return Category{}, &httpx.ValidationError{Fields: fields}
	}
	created, err := s.repo.Create(ctx, Category{Name: req.Name, OwnerID: caller.UserID})
	if err != nil {
		return Category{}, err
	}
	s.logger.Info("category created", slog.Int64("id", created.ID), slog.Int64("owner", caller.UserID))
	return created, nil
}
