package domain

import (
	"strings"
	"unicode"
)

// NormalizePostalCode strips all whitespace and upper-cases the code.
// " e1 1hj " becomes "E11HJ".
func NormalizePostalCode(code string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code))
}
