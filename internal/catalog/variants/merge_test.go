package variants

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/igourd/igourd-pos/internal/catalog"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestMergeSKUsKeepsExistingVariants(t *testing.T) {
	existing := []catalog.SKU{
		{ID: "sku-blue", SKUCode: "CUSTOM", Unit: "Box", Specs: map[string]string{"Color": "Blue", "Size": "M"}, Price: 12.5, Stock: 7, Status: catalog.StatusInactive},
		{ID: "sku-gone", SKUCode: "OLD", Unit: "Crate", Specs: map[string]string{"Color": "Red"}, Price: 1, Stock: 1, Status: catalog.StatusActive},
	}
	skeletons := GenerateCombinations(pieceAndBox(), colorAndSize())

	merged := MergeSKUs(existing, skeletons, sequentialIDs())
	require.Len(t, merged, 8)

	last := merged[7]
	require.Equal(t, "sku-blue", last.ID)
	require.Equal(t, "CUSTOM", last.SKUCode)
	require.Equal(t, 12.5, last.Price)
	require.Equal(t, 7, last.Stock)
	require.Equal(t, catalog.StatusInactive, last.Status)

	first := merged[0]
	require.Equal(t, "new-1", first.ID)
	require.Equal(t, "RED-S-PI", first.SKUCode)
	require.Zero(t, first.Price)
	require.Zero(t, first.Stock)
	require.Equal(t, catalog.StatusActive, first.Status)

	for _, sku := range merged {
		require.NotEqual(t, "sku-gone", sku.ID)
	}
}

func TestMergeSKUsEmpty(t *testing.T) {
	require.Empty(t, MergeSKUs(nil, nil, sequentialIDs()))
}

func TestRegenerateBootstrapProduct(t *testing.T) {
	original := catalog.BootstrapProducts()[0]

	got := Regenerate(original, sequentialIDs())

	require.Len(t, got.SKUs, 12)
	require.Equal(t, "sku1", got.SKUs[0].ID)
	require.Equal(t, 299.99, got.SKUs[0].Price)
	require.Equal(t, 150, got.SKUs[0].Stock)
	require.Equal(t, "new-1", got.SKUs[1].ID)
	require.Equal(t, "BLA-LAR-PI", got.SKUs[1].SKUCode)
	require.Len(t, original.SKUs, 3, "input product must not change")
}
