package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/patrimonio-app/patrimonio/internal/jobs"
)

// AssetCreatedJob consumes asset:created events.
type AssetCreatedJob struct {
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAssetCreatedJob initialises the handler.
func NewAssetCreatedJob(logger *slog.Logger, metrics *jobmetrics.Metrics) *AssetCreatedJob {
	return &AssetCreatedJob{Logger: logger, Metrics: metrics}
}

// Handle records the event.
func (j *AssetCreatedJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("asset created: handler not configured")
	}
	tracker := j.Metrics.Track(TaskAssetCreated)
	defer func() {
		err = tracker.End(err)
	}()

	var payload AssetCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("asset created: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.AssetID <= 0 {
		return fmt.Errorf("asset created: missing asset id: %w", asynq.SkipRetry)
	}

	logger(j.Logger).Info("asset created",
		slog.Int64("asset_id", payload.AssetID),
		slog.String("patrimonio", payload.Patrimonio),
		slog.Int64("category_id", payload.CategoryID),
		slog.Int64("owner_id", payload.OwnerID),
	)
	j.Metrics.AddAssetEvents("created", payload.CategoryID, 1)
	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
