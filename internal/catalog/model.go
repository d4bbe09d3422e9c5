package catalog

import "time"

// Status marks whether a product or SKU is sellable.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Unit is a measurement unit of a product, e.g. Piece or Box.
type Unit struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
	// ConversionRate is the quantity of this unit expressed in the product's base unit.
	ConversionRate float64 `json:"conversionRate" validate:"gt=0"`
}

// Specification is a free-form product attribute with its possible values, e.g. Color.
type Specification struct {
	ID     string   `json:"id"`
	Name   string   `json:"name" validate:"required"`
	Values []string `json:"values"`
}

// SKU is a concrete sellable variant fixing one unit and one value per specification.
type SKU struct {
	ID      string            `json:"id"`
	SKUCode string            `json:"skuCode"`
	Unit    string            `json:"unit" validate:"required"`
	Specs   map[string]string `json:"specs"`
	Price   float64           `json:"price" validate:"gte=0"`
	Stock   int               `json:"stock" validate:"gte=0"`
	Status  Status            `json:"status" validate:"oneof=active inactive"`
}

// Product is the catalog record. Units, specifications and SKUs live and die with it.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" validate:"required"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	BaseUnit       string          `json:"baseUnit"`
	Units          []Unit          `json:"units" validate:"unique=Name,dive"`
	Specifications []Specification `json:"specifications" validate:"unique=Name,dive"`
	SKUs           []SKU           `json:"skus" validate:"dive"`
	Status         Status          `json:"status" validate:"oneof=active inactive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy so that snapshots never share slices or maps with callers.
func (p Product) Clone() Product {
	out := p
	if p.Units != nil {
		out.Units = append([]Unit(nil), p.Units...)
	}
	if p.Specifications != nil {
		out.Specifications = make([]Specification, len(p.Specifications))
		for i, spec := range p.Specifications {
			spec.Values = append([]string(nil), spec.Values...)
			out.Specifications[i] = spec
		}
	}
	if p.SKUs != nil {
		out.SKUs = make([]SKU, len(p.SKUs))
		for i, sku := range p.SKUs {
			if sku.Specs != nil {
				specs := make(map[string]string, len(sku.Specs))
				for k, v := range sku.Specs {
					specs[k] = v
				}
				sku.Specs = specs
			}
			out.SKUs[i] = sku
		}
	}
	return out
}

// SpecificationNames returns the names of the product's specifications in order.
func (p Product) SpecificationNames() []string {
	names := make([]string, 0, len(p.Specifications))
	for _, spec := range p.Specifications {
		names = append(names, spec.Name)
	}
	return names
}
