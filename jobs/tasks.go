package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAssetCreated fans out after an asset is committed.
	TaskAssetCreated = "asset:created"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// AssetCreatedPayload describes a freshly committed asset.
type AssetCreatedPayload struct {
	AssetID    int64     `json:"asset_id"`
	Patrimonio string    `json:"patrimonio"`
	CategoryID int64     `json:"category_id"`
	OwnerID    int64     `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAssetCreatedTask constructs an Asynq task.
func NewAssetCreatedTask(payload AssetCreatedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssetCreated, data), nil
}

// IdempotencyCleanupPayload optionally overrides the configured retention.
type IdempotencyCleanupPayload struct {
	RetentionSeconds int64 `json:"retention_seconds,omitempty"`
}

// NewIdempotencyCleanupTask constructs the housekeeping task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionSeconds: int64(retention / time.Second)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
