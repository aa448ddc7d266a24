package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/patrimonio-app/patrimonio/internal/jobs"
)

// KeyCleaner deletes idempotency keys older than a cutoff.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob purges processed idempotency keys.
type IdempotencyCleanupJob struct {
	Cleaner   KeyCleaner
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob initialises the handler.
func NewIdempotencyCleanupJob(cleaner KeyCleaner, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Cleaner: cleaner, Retention: retention, Logger: logger, Metrics: metrics}
}

// Handle runs one cleanup pass.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Cleaner == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	defer func() {
		err = tracker.End(err)
	}()

	retention := j.Retention
	if len(t.Payload()) > 0 {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("idempotency cleanup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.RetentionSeconds > 0 {
			retention = time.Duration(payload.RetentionSeconds) * time.Second
		}
	}
	if retention <= 0 {
		return fmt.Errorf("idempotency cleanup: retention must be positive: %w", asynq.SkipRetry)
	}

	start := time.Now()
	deleted, err := j.Cleaner.Cleanup(ctx, retention)
	if err != nil {
		logger(j.Logger).Error("idempotency cleanup failed", slog.Any("error", err))
		return err
	}
	logger(j.Logger).Info("idempotency cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Duration("retention", retention),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
