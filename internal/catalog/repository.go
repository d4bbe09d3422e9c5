package catalog

import "context"

const (
	// StoreName is the logical name of the durable catalog.
	StoreName = "catalog"
	// SchemaVersion is the only record shape the durable store knows about.
	SchemaVersion = 1
)

// Repository is the durable keyed object store behind the catalog.
// Implementations open lazily and create their schema exactly once, at first open.
type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	// Insert fails with ErrDuplicateKey when the id already exists.
	Insert(ctx context.Context, product Product) error
	// Put inserts or replaces the record stored under product.ID.
	Put(ctx context.Context, product Product) error
	// Delete removes the record; a missing key is not an error.
	Delete(ctx context.Context, id string) error
	BulkInsert(ctx context.Context, products []Product) error
	Clear(ctx context.Context) error
	Close() error
}
