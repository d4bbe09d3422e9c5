package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// runRepositoryContract checks the behaviour every durable repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("empty on first open", func(t *testing.T) {
		repo := newRepo(t)
		products, err := repo.GetAll(context.Background())
		require.NoError(t, err)
		require.Empty(t, products)
	})

	t.Run("insert and read back in key order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, sampleProduct("b", "Toys")))
		require.NoError(t, repo.Insert(ctx, sampleProduct("a", "Tools")))

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.Equal(t, "a", products[0].ID)
		require.Equal(t, sampleProduct("a", "Tools").Units, products[0].Units)
	})

	t.Run("insert duplicate fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, sampleProduct("a", "Tools")))
		require.ErrorIs(t, repo.Insert(ctx, sampleProduct("a", "Toys")), ErrDuplicateKey)
	})

	t.Run("put upserts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Put(ctx, sampleProduct("a", "Tools")))
		require.NoError(t, repo.Put(ctx, sampleProduct("a", "Garden")))

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Garden", products[0].Category)
	})

	t.Run("delete missing is fine", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, sampleProduct("a", "Tools")))
		require.NoError(t, repo.Delete(ctx, "missing"))
		require.NoError(t, repo.Delete(ctx, "a"))

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, products)
	})

	t.Run("bulk insert and clear", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.BulkInsert(ctx, BootstrapProducts()))

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Equal(t, BootstrapProducts()[0].SKUs, products[0].SKUs)
		require.True(t, BootstrapProducts()[1].CreatedAt.Equal(products[1].CreatedAt))

		require.ErrorIs(t, repo.BulkInsert(ctx, BootstrapProducts()[:1]), ErrDuplicateKey)

		require.NoError(t, repo.Clear(ctx))
		products, err = repo.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, products)
	})

	t.Run("replace all", func(t *testing.T) {
		repo := newRepo(t)
		replacer, ok := repo.(Replacer)
		if !ok {
			t.Skip("repository does not replace atomically")
		}
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, sampleProduct("a", "Tools")))
		require.NoError(t, replacer.ReplaceAll(ctx, BootstrapProducts()))

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.Equal(t, "1", products[0].ID)
	})

	t.Run("drives a store", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		store := NewStore(repo)
		require.Equal(t, OriginSeeded, store.Initialize(ctx))

		created, err := store.Create(ctx, sampleProduct("", "Garden"))
		require.NoError(t, err)
		require.NoError(t, store.Update(ctx, "1", sampleProduct("1", "Audio")))
		require.NoError(t, store.Delete(ctx, "2"))

		reopened := NewStore(repo)
		require.Equal(t, OriginDurable, reopened.Initialize(ctx))
		require.Equal(t, 2, reopened.Len())
		_, ok := reopened.Get(created.ID)
		require.True(t, ok)
		got, _ := reopened.Get("1")
		require.Equal(t, "Audio", got.Category)
	})
}
