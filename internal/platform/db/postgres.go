package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a PostgreSQL connection pool tagged with the application name and pings it.
func New(ctx context.Context, dsn, application string) (*pgxpool.Pool, error) {
	pool, err := NewLazy(dsn, application)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}
	return pool, nil
}

// NewLazy creates the pool without connecting; the first query dials the server.
func NewLazy(dsn, application string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	if application != "" {
		config.ConnConfig.RuntimeParams["application_name"] = application
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}
	return pool, nil
}
