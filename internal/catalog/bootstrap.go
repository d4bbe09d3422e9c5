package catalog

import "time"

// BootstrapProducts returns the seed catalog used when durable storage is empty or unavailable.
// Each call returns a fresh copy.
func BootstrapProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Premium Wireless Headphones",
			Category:    "Electronics",
			Description: "High-quality wireless headphones with noise cancellation",
			BaseUnit:    "Piece",
			Units: []Unit{
				{ID: "u1", Name: "Piece", ConversionRate: 1},
				{ID: "u2", Name: "Box", ConversionRate: 10},
			},
			Specifications: []Specification{
				{ID: "s1", Name: "Color", Values: []string{"Black", "White", "Blue"}},
				{ID: "s2", Name: "Size", Values: []string{"Standard", "Large"}},
			},
			SKUs: []SKU{
				{ID: "sku1", SKUCode: "WH-BLK-STD-PC", Unit: "Piece", Specs: map[string]string{"Color": "Black", "Size": "Standard"}, Price: 299.99, Stock: 150, Status: StatusActive},
				{ID: "sku2", SKUCode: "WH-WHT-STD-PC", Unit: "Piece", Specs: map[string]string{"Color": "White", "Size": "Standard"}, Price: 299.99, Stock: 80, Status: StatusActive},
				{ID: "sku3", SKUCode: "WH-BLU-LRG-PC", Unit: "Piece", Specs: map[string]string{"Color": "Blue", "Size": "Large"}, Price: 349.99, Stock: 45, Status: StatusActive},
			},
			Status:    StatusActive,
			CreatedAt: date(2024, time.January, 15),
			UpdatedAt: date(2024, time.January, 20),
		},
		{
			ID:          "2",
			Name:        "Organic Green Tea",
			Category:    "Food & Beverage",
			Description: "Premium organic green tea leaves",
			BaseUnit:    "Gram",
			Units: []Unit{
				{ID: "u3", Name: "Gram", ConversionRate: 1},
				{ID: "u4", Name: "Pack", ConversionRate: 100},
				{ID: "u5", Name: "Carton", ConversionRate: 1000},
			},
			Specifications: []Specification{
				{ID: "s3", Name: "Grade", Values: []string{"Premium", "Standard"}},
				{ID: "s4", Name: "Package", Values: []string{"Bag", "Box"}},
			},
			SKUs: []SKU{
				{ID: "sku4", SKUCode: "GT-PREM-BAG-GRAM", Unit: "Gram", Specs: map[string]string{"Grade": "Premium", "Package": "Bag"}, Price: 0.5, Stock: 5000, Status: StatusActive},
				{ID: "sku5", SKUCode: "GT-STD-BOX-PACK", Unit: "Pack", Specs: map[string]string{"Grade": "Standard", "Package": "Box"}, Price: 35.0, Stock: 200, Status: StatusActive},
			},
			Status:    StatusActive,
			CreatedAt: date(2024, time.January, 10),
			UpdatedAt: date(2024, time.January, 18),
		},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
