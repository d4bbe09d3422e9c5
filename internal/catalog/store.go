package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a Store.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Origin tells where the in-memory set came from during Initialize.
type Origin string

const (
	OriginNone     Origin = ""
	OriginDurable  Origin = "durable"
	OriginSeeded   Origin = "seeded"
	OriginFallback Origin = "fallback"
)

// Recorder observes durable-backed store operations.
type Recorder interface {
	ObserveStoreOperation(operation string, err error, elapsed time.Duration)
}

// Replacer is implemented by repositories that can swap their whole content in one durable step.
// Reset prefers it over Clear followed by BulkInsert.
type Replacer interface {
	ReplaceAll(ctx context.Context, products []Product) error
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for absorbed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder installs an operation recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Store) { s.recorder = recorder }
}

// WithBootstrap replaces the seed dataset.
func WithBootstrap(seed func() []Product) Option {
	return func(s *Store) {
		if seed != nil {
			s.bootstrap = seed
		}
	}
}

// WithIDGenerator replaces the identity generator used by Create.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Store owns the in-memory catalog and keeps it in step with the durable repository.
//
// Mutations are serialized and follow durable-first ordering: the in-memory snapshot is replaced
// only after the repository call succeeded. Readers load the published snapshot without locking,
// so a mutation waiting on the repository is invisible to them until it has been persisted.
type Store struct {
	repo      Repository
	logger    *slog.Logger
	recorder  Recorder
	bootstrap func() []Product
	newID     func() string

	state   atomic.Int32
	writeMu sync.Mutex
	current atomic.Pointer[snapshot]
	origin  Origin
}

// NewStore constructs an uninitialized Store over repo.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		logger:    slog.Default(),
		bootstrap: BootstrapProducts,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(newSnapshot(nil))
	return s
}

// State reports the lifecycle state.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Ready reports whether Initialize has completed.
func (s *Store) Ready() bool {
	return s.State() == StateReady
}

// Initialize loads the catalog. It adopts the durable content when there is any, seeds durable
// storage with the bootstrap dataset when it is empty, and falls back to an in-memory bootstrap
// copy when the durable read fails. It always leaves the store ready; calling it again is a no-op.
func (s *Store) Initialize(ctx context.Context) Origin {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.Ready() {
		return s.origin
	}
	s.state.Store(int32(StateInitializing))

	var products []Product
	var origin Origin
	err := s.durable(ctx, "get_all", func(ctx context.Context) error {
		var err error
		products, err = s.repo.GetAll(ctx)
		return err
	})
	switch {
	case err != nil:
		s.logger.Warn("catalog: durable read failed, using bootstrap dataset", slog.Any("error", err))
		products = s.bootstrap()
		origin = OriginFallback
	case len(products) == 0:
		products = s.bootstrap()
		seed := cloneAll(products)
		if err := s.durable(ctx, "bulk_insert", func(ctx context.Context) error {
			return s.repo.BulkInsert(ctx, seed)
		}); err != nil {
			s.logger.Error("catalog: seed durable store", slog.Any("error", err))
		}
		origin = OriginSeeded
	default:
		origin = OriginDurable
	}

	s.current.Store(newSnapshot(products))
	s.origin = origin
	s.state.Store(int32(StateReady))
	s.logger.Info("catalog: store ready", slog.String("origin", string(origin)), slog.Int("products", len(products)))
	return origin
}

// Origin reports where the in-memory set came from; empty before Initialize.
func (s *Store) Origin() Origin {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.origin
}

// Get looks a product up in memory. It never touches durable storage.
func (s *Store) Get(id string) (Product, bool) {
	snap := s.current.Load()
	i, ok := snap.index[id]
	if !ok {
		return Product{}, false
	}
	return snap.products[i].Clone(), true
}

// All returns every product, most recently created first.
func (s *Store) All() []Product {
	return cloneAll(s.current.Load().products)
}

// Len returns the number of products in memory.
func (s *Store) Len() int {
	return len(s.current.Load().products)
}

// Categories returns the distinct categories in first-appearance order.
func (s *Store) Categories() []string {
	return append([]string(nil), s.current.Load().categories...)
}

// Create persists a new product and prepends it to the in-memory set.
// An empty id is replaced by a generated one.
func (s *Store) Create(ctx context.Context, product Product) (Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return Product{}, ErrNotReady
	}
	record := product.Clone()
	if record.ID == "" {
		record.ID = s.newID()
	}
	snap := s.current.Load()
	if _, ok := snap.index[record.ID]; ok {
		return Product{}, fmt.Errorf("catalog: create %s: %w", record.ID, ErrDuplicateKey)
	}
	if err := s.durable(ctx, "insert", func(ctx context.Context) error {
		return s.repo.Insert(ctx, record)
	}); err != nil {
		return Product{}, err
	}
	s.current.Store(snap.prepend(record))
	return record.Clone(), nil
}

// Update replaces the product stored under id. A missing id is silently ignored;
// use UpdateExisting to be told about it.
func (s *Store) Update(ctx context.Context, id string, product Product) error {
	return s.update(ctx, id, product, false)
}

// UpdateExisting behaves like Update but returns ErrNotFound for a missing id.
func (s *Store) UpdateExisting(ctx context.Context, id string, product Product) error {
	return s.update(ctx, id, product, true)
}

func (s *Store) update(ctx context.Context, id string, product Product, strict bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return ErrNotReady
	}
	snap := s.current.Load()
	i, ok := snap.index[id]
	if !ok {
		if strict {
			return fmt.Errorf("catalog: update %s: %w", id, ErrNotFound)
		}
		return nil
	}
	record := product.Clone()
	record.ID = id
	if err := s.durable(ctx, "put", func(ctx context.Context) error {
		return s.repo.Put(ctx, record)
	}); err != nil {
		return err
	}
	s.current.Store(snap.replace(i, record))
	return nil
}

// Delete removes id from durable storage and then from memory. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id, false)
}

// DeleteExisting behaves like Delete but returns ErrNotFound for a missing id.
func (s *Store) DeleteExisting(ctx context.Context, id string) error {
	return s.delete(ctx, id, true)
}

func (s *Store) delete(ctx context.Context, id string, strict bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return ErrNotReady
	}
	snap := s.current.Load()
	i, ok := snap.index[id]
	if !ok && strict {
		return fmt.Errorf("catalog: delete %s: %w", id, ErrNotFound)
	}
	if err := s.durable(ctx, "delete", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	if ok {
		s.current.Store(snap.remove(i))
	}
	return nil
}

// Reset replaces the durable and in-memory catalog with the bootstrap dataset.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return ErrNotReady
	}
	products := s.bootstrap()
	seed := cloneAll(products)
	if replacer, ok := s.repo.(Replacer); ok {
		if err := s.durable(ctx, "replace_all", func(ctx context.Context) error {
			return replacer.ReplaceAll(ctx, seed)
		}); err != nil {
			return err
		}
	} else {
		if err := s.durable(ctx, "clear", s.repo.Clear); err != nil {
			return err
		}
		if err := s.durable(ctx, "bulk_insert", func(ctx context.Context) error {
			return s.repo.BulkInsert(ctx, seed)
		}); err != nil {
			return err
		}
	}
	s.current.Store(newSnapshot(products))
	s.logger.Info("catalog: store reset", slog.Int("products", len(products)))
	return nil
}

// durable runs one repository call. The call is detached from ctx cancellation: once dispatched,
// the caller waits for the repository to answer.
func (s *Store) durable(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(context.WithoutCancel(ctx))
	if s.recorder != nil {
		s.recorder.ObserveStoreOperation(op, err, time.Since(start))
	}
	return durableErr(op, err)
}

func cloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
