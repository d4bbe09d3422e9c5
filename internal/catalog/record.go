package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
)

func encodeProduct(p Product) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode product %s: %w", p.ID, err)
	}
	return data, nil
}

func decodeProduct(data []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, fmt.Errorf("catalog: decode product: %w", err)
	}
	return p, nil
}

// sortByID orders products by key, the order every repository yields them in.
func sortByID(products []Product) {
	sort.SliceStable(products, func(i, j int) bool { return products[i].ID < products[j].ID })
}
