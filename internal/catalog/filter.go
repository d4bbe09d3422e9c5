package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// ListFilter narrows List results. Zero fields match everything.
type ListFilter struct {
	Category string
	Status   Status
	// Search matches product names case-insensitively.
	Search string
}

// List returns the in-memory products matching filter, most recently created first.
func (s *Store) List(filter ListFilter) []Product {
	snap := s.current.Load()
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(filter.Search))

	out := make([]Product, 0, len(snap.products))
	for _, p := range snap.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(fold.String(p.Name), search) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
