package jobs

import (
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogReset restores the catalog to its bootstrap dataset.
	TaskCatalogReset = "catalog:reset"
	// TaskCatalogRegenerateSKUs rebuilds the SKUs of one product.
	TaskCatalogRegenerateSKUs = "catalog:skus.regenerate"
)

// RegenerateSKUsPayload identifies the product whose SKUs are rebuilt.
type RegenerateSKUsPayload struct {
	ProductID string `json:"product_id"`
}

// NewCatalogResetTask constructs a reset task. Only one reset may be queued at a time.
func NewCatalogResetTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogReset, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
}

// NewRegenerateSKUsTask constructs a regeneration task for productID.
func NewRegenerateSKUsTask(productID string) (*asynq.Task, error) {
	if productID == "" {
		return nil, errors.New("jobs: regenerate: product id required")
	}
	data, err := json.Marshal(RegenerateSKUsPayload{ProductID: productID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRegenerateSKUs, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
