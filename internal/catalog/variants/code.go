package variants

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	valuePrefixLen = 3
	unitPrefixLen  = 2
)

// Code derives the display SKU code: the upper-cased first three characters of every value,
// joined by "-", followed by the upper-cased first two characters of the unit.
// When the value part comes out empty the code is the unit part alone.
// Codes are not guaranteed to be unique.
func Code(values []string, unit string) string {
	upper := cases.Upper(language.Und)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, upper.String(prefix(v, valuePrefixLen)))
	}
	unitPart := upper.String(prefix(unit, unitPrefixLen))
	if specPart := strings.Join(parts, "-"); specPart != "" {
		return specPart + "-" + unitPart
	}
	return unitPart
}

// prefix returns the first n characters of s, or all of s when it is shorter.
func prefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
