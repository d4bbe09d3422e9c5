package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/igourd/igourd-pos/internal/catalog"
	"github.com/igourd/igourd-pos/internal/platform/cache"
	"github.com/igourd/igourd-pos/internal/platform/db"
)

const testModeEnv = "CATALOG_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the CATALOG_TEST_MODE flag once.
func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// Storage is the durable backend chosen by CATALOG_DRIVER together with its cleanup.
type Storage struct {
	Repository catalog.Repository
	closers    []func() error
}

// Close releases the repository and the connections it owns, last opened first.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// OpenStorage builds the repository for cfg.CatalogDriver. No connection is made here:
// an unreachable backend surfaces on the first read, where the store falls back to bootstrap data.
func OpenStorage(cfg *Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	storage := &Storage{}
	switch cfg.CatalogDriver {
	case DriverSQLite, "":
		repo := catalog.NewSQLiteRepository(catalog.SQLiteConfig{
			Path:  cfg.CatalogSQLitePath,
			Debug: cfg.CatalogDebugSQL,
		})
		storage.Repository = repo
		storage.closers = append(storage.closers, repo.Close)
	case DriverRedis:
		client := cache.NewClient(cache.Options{Addr: cfg.RedisAddr})
		storage.Repository = catalog.NewRedisRepository(client, cfg.CatalogRedisPrefix)
		storage.closers = append(storage.closers, client.Close)
	case DriverPostgres:
		pool, err := db.NewLazy(cfg.PGDSN, "catalog")
		if err != nil {
			return nil, err
		}
		storage.Repository = catalog.NewPostgresRepository(pool)
		storage.closers = append(storage.closers, func() error {
			pool.Close()
			return nil
		})
	default:
		return nil, fmt.Errorf("app: unknown catalog driver %q", cfg.CatalogDriver)
	}
	logger.Info("catalog storage configured", slog.String("driver", cfg.CatalogDriver))
	return storage, nil
}

// RedisClientFor returns a client for the queue backend. Callers close it.
func RedisClientFor(cfg *Config) *redis.Client {
	return cache.NewClient(cache.Options{Addr: cfg.RedisAddr})
}
