package variants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/igourd/igourd-pos/internal/catalog"
)

// ErrTooManyCombinations is returned when a generation would exceed the caller's limit.
var ErrTooManyCombinations = errors.New("variants: too many combinations")

// Preview is a generated SKU set with its size.
type Preview struct {
	Count int        `json:"count"`
	SKUs  []Skeleton `json:"skus"`
}

// Limit returns ErrTooManyCombinations when units and specs expand past limit. A limit <= 0 disables the check.
func Limit(units []catalog.Unit, specs []catalog.Specification, limit int) (int, error) {
	count := CountCombinations(units, specs)
	if limit > 0 && count > limit {
		return count, fmt.Errorf("%w: %d exceeds limit %d", ErrTooManyCombinations, count, limit)
	}
	return count, nil
}

// PreviewCombinations generates the skeletons for units and specs, refusing sets larger than limit.
func PreviewCombinations(units []catalog.Unit, specs []catalog.Specification, limit int) (Preview, error) {
	count, err := Limit(units, specs, limit)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Count: count, SKUs: GenerateCombinations(units, specs)}, nil
}

// ProductStore is the store surface RegenerateStored needs.
type ProductStore interface {
	Get(id string) (catalog.Product, bool)
	UpdateExisting(ctx context.Context, id string, p catalog.Product) error
}

// RegenerateStored rebuilds the SKUs of product id and writes the product back through store.
func RegenerateStored(ctx context.Context, store ProductStore, id string, limit int, newID func() string) (catalog.Product, error) {
	current, ok := store.Get(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("variants: regenerate %s: %w", id, catalog.ErrNotFound)
	}
	if _, err := Limit(current.Units, current.Specifications, limit); err != nil {
		return catalog.Product{}, err
	}
	updated := Regenerate(current, newID)
	updated.UpdatedAt = time.Now().UTC()
	if err := store.UpdateExisting(ctx, id, updated); err != nil {
		return catalog.Product{}, err
	}
	return updated, nil
}
