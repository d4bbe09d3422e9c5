package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/igourd/igourd-pos/internal/platform/db"
)

func TestTranslatePostgres(t *testing.T) {
	dup := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key"})
	require.ErrorIs(t, translatePostgres("insert", dup), ErrDuplicateKey)

	other := &pgconn.PgError{Code: "42P01", Message: "undefined table"}
	err := translatePostgres("insert", other)
	require.False(t, errors.Is(err, ErrDuplicateKey))
	require.ErrorAs(t, err, &other)
}

// TestPostgresRepositoryContract runs against a live server when CATALOG_TEST_PG_DSN is set.
func TestPostgresRepositoryContract(t *testing.T) {
	dsn := os.Getenv("CATALOG_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_PG_DSN not set")
	}
	pool, err := db.New(context.Background(), dsn, "catalog-test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runRepositoryContract(t, func(t *testing.T) Repository {
		repo := NewPostgresRepository(pool)
		require.NoError(t, repo.Clear(context.Background()))
		return repo
	})
}
