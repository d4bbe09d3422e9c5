package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks a product before it is handed to the store. The store itself does not validate.
func Validate(p Product) error {
	var problems []string
	if err := structValidator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fieldErr := range fieldErrs {
			problems = append(problems, describe(fieldErr))
		}
	}

	if p.BaseUnit != "" && !hasUnit(p.Units, p.BaseUnit) {
		problems = append(problems, fmt.Sprintf("baseUnit %q does not match any unit", p.BaseUnit))
	}
	specNames := make(map[string]struct{}, len(p.Specifications))
	for _, spec := range p.Specifications {
		specNames[spec.Name] = struct{}{}
	}
	for i, sku := range p.SKUs {
		for name := range sku.Specs {
			if _, ok := specNames[name]; !ok {
				problems = append(problems, fmt.Sprintf("skus[%d] references unknown specification %q", i, name))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func hasUnit(units []Unit, name string) bool {
	for _, u := range units {
		if u.Name == name {
			return true
		}
	}
	return false
}

func describe(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "unique":
		return field + " must have unique " + strings.ToLower(fieldErr.Param()) + "s"
	case "gt":
		return field + " must be greater than " + fieldErr.Param()
	case "gte":
		return field + " must not be negative"
	case "oneof":
		return field + " must be one of " + fieldErr.Param()
	default:
		return field + " is invalid"
	}
}
