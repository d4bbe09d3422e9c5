package variants

import (
	"sort"
	"strings"

	"github.com/igourd/igourd-pos/internal/catalog"
)

// MergeSKUs folds freshly generated skeletons into a product's existing SKUs.
//
// A skeleton matching an existing SKU (same unit, same specification values) keeps that SKU's id,
// price, stock, status and code. Other skeletons become new active SKUs with ids from newID and zero
// price and stock. Existing SKUs that no skeleton matches are dropped. The result follows skeleton order.
func MergeSKUs(existing []catalog.SKU, skeletons []Skeleton, newID func() string) []catalog.SKU {
	byKey := make(map[string]catalog.SKU, len(existing))
	for _, sku := range existing {
		key := variantKey(sku.Unit, sku.Specs)
		if _, ok := byKey[key]; !ok {
			byKey[key] = sku
		}
	}

	out := make([]catalog.SKU, 0, len(skeletons))
	for _, skel := range skeletons {
		key := variantKey(skel.Unit, skel.Specs)
		if sku, ok := byKey[key]; ok {
			delete(byKey, key)
			sku.Specs = copySpecs(skel.Specs)
			if sku.SKUCode == "" {
				sku.SKUCode = skel.SKUCode
			}
			out = append(out, sku)
			continue
		}
		out = append(out, catalog.SKU{
			ID:      newID(),
			SKUCode: skel.SKUCode,
			Unit:    skel.Unit,
			Specs:   copySpecs(skel.Specs),
			Status:  catalog.StatusActive,
		})
	}
	return out
}

// variantKey identifies a variant independently of map iteration order.
func variantKey(unit string, specs map[string]string) string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(unit)
	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte(1)
		b.WriteString(specs[name])
	}
	return b.String()
}

func copySpecs(specs map[string]string) map[string]string {
	out := make(map[string]string, len(specs))
	for k, v := range specs {
		out[k] = v
	}
	return out
}

// Regenerate returns a copy of p whose SKUs are rebuilt from its current units and specifications.
func Regenerate(p catalog.Product, newID func() string) catalog.Product {
	out := p.Clone()
	out.SKUs = MergeSKUs(p.SKUs, GenerateCombinations(p.Units, p.Specifications), newID)
	return out
}
