package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/igourd/igourd-pos/internal/catalog"
	"github.com/igourd/igourd-pos/internal/catalog/variants"
	jobmetrics "github.com/igourd/igourd-pos/internal/jobs"
)

// CatalogStore is the store surface the catalog jobs drive.
type CatalogStore interface {
	variants.ProductStore
	Reset(ctx context.Context) error
}

// CatalogJobs handles the catalog maintenance tasks.
type CatalogJobs struct {
	Store           CatalogStore
	Logger          *slog.Logger
	Metrics         *jobmetrics.Metrics
	MaxCombinations int
	NewID           func() string
}

// NewCatalogJobs constructs the job handlers.
func NewCatalogJobs(store CatalogStore, logger *slog.Logger, metrics *jobmetrics.Metrics, maxCombinations int) *CatalogJobs {
	return &CatalogJobs{
		Store:           store,
		Logger:          logger,
		Metrics:         metrics,
		MaxCombinations: maxCombinations,
		NewID:           uuid.NewString,
	}
}

// Handlers lists the task handlers for worker registration.
func (j *CatalogJobs) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskCatalogReset, Handler: j.HandleReset},
		{Type: TaskCatalogRegenerateSKUs, Handler: j.HandleRegenerateSKUs},
	}
}

// HandleReset executes TaskCatalogReset.
func (j *CatalogJobs) HandleReset(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("catalog reset: store not configured")
	}
	tracker := j.Metrics.Track(TaskCatalogReset)
	defer func() { err = tracker.End(err) }()

	if err = j.Store.Reset(ctx); err != nil {
		j.log().Error("catalog reset", slog.Any("error", err))
		if errors.Is(err, catalog.ErrNotReady) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}
	j.log().Info("catalog reset completed")
	return nil
}

// HandleRegenerateSKUs executes TaskCatalogRegenerateSKUs.
func (j *CatalogJobs) HandleRegenerateSKUs(ctx context.Context, task *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("catalog regenerate: store not configured")
	}
	var payload RegenerateSKUsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.ProductID == "" {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskCatalogRegenerateSKUs)
	defer func() { err = tracker.End(err) }()

	newID := j.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	product, err := variants.RegenerateStored(ctx, j.Store, payload.ProductID, j.MaxCombinations, newID)
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, variants.ErrTooManyCombinations), errors.Is(err, catalog.ErrNotReady):
		j.log().Warn("catalog regenerate skipped", slog.String("product_id", payload.ProductID), slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	case err != nil:
		j.log().Error("catalog regenerate", slog.String("product_id", payload.ProductID), slog.Any("error", err))
		return err
	}
	j.Metrics.AddGeneratedSKUs(TaskCatalogRegenerateSKUs, len(product.SKUs))
	j.log().Info("catalog skus regenerated", slog.String("product_id", payload.ProductID), slog.Int("skus", len(product.SKUs)))
	return nil
}

func (j *CatalogJobs) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
