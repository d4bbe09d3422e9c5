// Package variants derives SKU skeletons from a product's units and specifications.
package variants

import (
	"math"

	"github.com/igourd/igourd-pos/internal/catalog"
)

// Skeleton is a generated SKU without identity, price or stock.
type Skeleton struct {
	SKUCode string            `json:"skuCode"`
	Unit    string            `json:"unit"`
	Specs   map[string]string `json:"specs"`
	Status  catalog.Status    `json:"status"`
}

// combination is a partial assignment. names keeps first-assignment order so the code is
// derived in specification order.
type combination struct {
	unit  string
	names []string
	specs map[string]string
}

func (c combination) with(name, value string) combination {
	specs := make(map[string]string, len(c.specs)+1)
	for k, v := range c.specs {
		specs[k] = v
	}
	names := c.names
	if _, ok := specs[name]; !ok {
		names = append(append(make([]string, 0, len(c.names)+1), c.names...), name)
	}
	specs[name] = value
	return combination{unit: c.unit, names: names, specs: specs}
}

// GenerateCombinations returns every unit × specification-value assignment.
//
// The result is ordered by unit, then by specification position, then by value position.
// Specifications without values are skipped. No units means no combinations.
func GenerateCombinations(units []catalog.Unit, specs []catalog.Specification) []Skeleton {
	if len(units) == 0 {
		return []Skeleton{}
	}

	combos := make([]combination, 0, len(units))
	for _, u := range units {
		combos = append(combos, combination{unit: u.Name, specs: map[string]string{}})
	}

	for _, spec := range specs {
		if len(spec.Values) == 0 {
			continue
		}
		next := make([]combination, 0, len(combos)*len(spec.Values))
		for _, combo := range combos {
			for _, value := range spec.Values {
				next = append(next, combo.with(spec.Name, value))
			}
		}
		combos = next
	}

	out := make([]Skeleton, 0, len(combos))
	for _, combo := range combos {
		values := make([]string, 0, len(combo.names))
		for _, name := range combo.names {
			values = append(values, combo.specs[name])
		}
		out = append(out, Skeleton{
			SKUCode: Code(values, combo.unit),
			Unit:    combo.unit,
			Specs:   combo.specs,
			Status:  catalog.StatusActive,
		})
	}
	return out
}

// CountCombinations returns len(GenerateCombinations(units, specs)) without building the result.
// It saturates at math.MaxInt.
func CountCombinations(units []catalog.Unit, specs []catalog.Specification) int {
	count := len(units)
	if count == 0 {
		return 0
	}
	for _, spec := range specs {
		n := len(spec.Values)
		if n == 0 {
			continue
		}
		if count > math.MaxInt/n {
			return math.MaxInt
		}
		count *= n
	}
	return count
}
