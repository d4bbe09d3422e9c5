package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsBootstrap(t *testing.T) {
	for _, p := range BootstrapProducts() {
		require.NoError(t, Validate(p), p.Name)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Product)
		want   string
	}{
		{
			name:   "missing name",
			mutate: func(p *Product) { p.Name = "" },
			want:   "Name is required",
		},
		{
			name:   "unknown status",
			mutate: func(p *Product) { p.Status = "archived" },
			want:   "Status must be one of active inactive",
		},
		{
			name:   "zero conversion rate",
			mutate: func(p *Product) { p.Units[1].ConversionRate = 0 },
			want:   "Units[1].ConversionRate must be greater than 0",
		},
		{
			name:   "duplicate unit names",
			mutate: func(p *Product) { p.Units[1].Name = p.Units[0].Name },
			want:   "Units must have unique names",
		},
		{
			name:   "negative price",
			mutate: func(p *Product) { p.SKUs[0].Price = -1 },
			want:   "SKUs[0].Price must not be negative",
		},
		{
			name:   "base unit not listed",
			mutate: func(p *Product) { p.BaseUnit = "Crate" },
			want:   `baseUnit "Crate" does not match any unit`,
		},
		{
			name:   "sku references unknown specification",
			mutate: func(p *Product) { p.SKUs[0].Specs["Weight"] = "Heavy" },
			want:   `skus[0] references unknown specification "Weight"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BootstrapProducts()[0]
			tt.mutate(&p)

			err := Validate(p)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	p := BootstrapProducts()[1]
	p.Name = ""
	p.BaseUnit = "Crate"

	err := Validate(p)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "does not match any unit")
}
