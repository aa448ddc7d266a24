package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
	"github.com/patrimonio-app/patrimonio/jobs"
)

const (
	maxIdempotencyKeyLength = 255
	publishTimeout          = 5 * time.Second
)

// EventPublisher announces committed assets.
type EventPublisher interface {
	EnqueueAssetCreated(ctx context.Context, payload jobs.AssetCreatedPayload) error
}

// CreatedCounter counts committed assets.
type CreatedCounter interface {
	IncAssetsCreated()
}

// Service implements the asset use cases.
type Service struct {
	repo    Repository
	events  EventPublisher
	metrics CreatedCounter
	logger  *slog.Logger
	steps   []validationStep
}

// ServiceConfig bundles optional collaborators.
type ServiceConfig struct {
	Events  EventPublisher
	Metrics CreatedCounter
	Logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, categories CategoryChecker, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		logger:  logger,
		steps:   pipeline(httpx.NewValidator(), repo, categories),
	}
}

func authorize(caller rbac.Principal, capability rbac.Capability) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}
	if !caller.Can(capability) {
		return ErrForbidden
	}
	return nil
}

// Create validates req and stores a new asset owned by caller. The
// idempotencyKey is optional.
func (s *Service) Create(ctx context.Context, caller rbac.Principal, req CreateAssetRequest, idempotencyKey string) (*Asset, error) {
	if err := authorize(caller, rbac.CapAssetCreate); err != nil {
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		return nil, httpx.NewValidationError("non_field_errors",
			fmt.Sprintf("Idempotency-Key must have no more than %d characters.", maxIdempotencyKeyLength))
	}
	if err := runPipeline(ctx, s.steps, &req); err != nil {
		return nil, err
	}

	asset := Asset{
		Patrimonio:  req.Patrimonio,
		CategoryID:  req.Category,
		OwnerID:     caller.UserID,
		FieldValues: make([]FieldValue, 0, len(req.FieldValues)),
	}
	for _, fv := range req.FieldValues {
		asset.FieldValues = append(asset.FieldValues, FieldValue{Field: fv.Field, Value: fv.Value})
	}

	var created *Asset
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if idempotencyKey != "" {
			if err := tx.ClaimIdempotencyKey(ctx, idempotencyKey); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.Insert(ctx, asset)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditLog{
			ActorID:  caller.UserID,
			Action:   "asset.create",
			Entity:   "asset",
			EntityID: strconv.FormatInt(created.ID, 10),
			Meta: map[string]any{
				"patrimonio":   created.Patrimonio,
				"category_id":  created.CategoryID,
				"field_values": len(created.FieldValues),
			},
		})
	})
	if err != nil {
		return nil, s.persistError(err, asset)
	}

	s.afterCreate(ctx, *created)
	return created, nil
}

func (s *Service) persistError(err error, asset Asset) error {
	switch {
	case errors.Is(err, ErrPatrimonioTaken):
		return httpx.NewValidationError("patrimonio", MsgPatrimonioTaken)
	case errors.Is(err, ErrCategoryMissing):
		return httpx.NewValidationError("category", invalidPK(asset.CategoryID))
	case errors.Is(err, shared.ErrIdempotencyConflict):
		return err
	}
	return fmt.Errorf("create asset: %w", err)
}

func (s *Service) afterCreate(ctx context.Context, asset Asset) {
	if s.metrics != nil {
		s.metrics.IncAssetsCreated()
	}
	logger := s.logger.With(slog.Int64("asset_id", asset.ID), slog.String("patrimonio", asset.Patrimonio))
	logger.Info("asset created", slog.Int64("owner_id", asset.OwnerID), slog.Int64("category_id", asset.CategoryID))
	if s.events == nil {
		return
	}
	// The asset is committed; a client disconnect must not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.events.EnqueueAssetCreated(ctx, jobs.AssetCreatedPayload{
		AssetID:    asset.ID,
		Patrimonio: asset.Patrimonio,
		CategoryID: asset.CategoryID,
		OwnerID:    asset.OwnerID,
		CreatedAt:  asset.CreatedAt,
	})
	if err != nil {
		logger.Warn("enqueue asset created", slog.Any("error", err))
	}
}

// Get returns one asset.
func (s *Service) Get(ctx context.Context, caller rbac.Principal, id int64) (*Asset, error) {
	if err := authorize(caller, rbac.CapAssetView); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of assets and the total match count.
func (s *Service) List(ctx context.Context, caller rbac.Principal, filters shared.ListFilters) ([]Asset, int, error) {
	if err := authorize(caller, rbac.CapAssetView); err != nil {
		return nil, 0, err
	}
	filters.Page, filters.Limit = shared.NormalizePage(filters.Page, filters.Limit)
	return s.repo.List(ctx, filters)
}

