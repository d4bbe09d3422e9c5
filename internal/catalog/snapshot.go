package catalog

// snapshot is an immutable view of the catalog. Mutations build a new snapshot and publish it.
type snapshot struct {
	products   []Product
	index      map[string]int
	categories []string
}

func newSnapshot(products []Product) *snapshot {
	snap := &snapshot{
		products: products,
		index:    make(map[string]int, len(products)),
	}
	seen := make(map[string]struct{})
	for i, p := range products {
		snap.index[p.ID] = i
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			snap.categories = append(snap.categories, p.Category)
		}
	}
	return snap
}

func (s *snapshot) prepend(p Product) *snapshot {
	products := make([]Product, 0, len(s.products)+1)
	products = append(products, p)
	products = append(products, s.products...)
	return newSnapshot(products)
}

func (s *snapshot) replace(i int, p Product) *snapshot {
	products := append([]Product(nil), s.products...)
	products[i] = p
	return newSnapshot(products)
}

func (s *snapshot) remove(i int) *snapshot {
	products := make([]Product, 0, len(s.products)-1)
	products = append(products, s.products[:i]...)
	products = append(products, s.products[i+1:]...)
	return newSnapshot(products)
}
