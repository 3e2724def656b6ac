// Package text contains helpers for displaying text
package text

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated text if requested
const Ellipsis = "..."

// Truncate returns input cut to at most truncateTo runes, followed by Ellipsis if
// includeEllipses is true and something was cut. Blank input yields the empty string.
// A negative truncateTo disables truncation.
func Truncate(input string, truncateTo int, includeEllipses bool) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if truncateTo < 0 || utf8.RuneCountInString(input) <= truncateTo {
		return input
	}
	out := string([]rune(input)[:truncateTo])
	if includeEllipses {
		out += Ellipsis
	}
	return out
}

// TruncateValue is Truncate for arbitrary values. nil yields the empty string,
// everything else is formatted with fmt first.
func TruncateValue(v interface{}, truncateTo int, includeEllipses bool) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return Truncate(v, truncateTo, includeEllipses)
	case fmt.Stringer:
		return Truncate(v.String(), truncateTo, includeEllipses)
	default:
		return Truncate(fmt.Sprint(v), truncateTo, includeEllipses)
	}
}
