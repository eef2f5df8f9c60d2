package util

import (
	"unicode/utf8"
)

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// Int64Ptr returns a pointer to the given int64
func Int64Ptr(i int64) *int64 {
	return &i
}

// FloatPtr returns a pointer to the given float
func FloatPtr(f float64) *float64 {
	return &f
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}

// Truncate shortens s to at most n runes, appending an ellipsis when the
// string was cut. Keeps failure details readable in summaries and
// spreadsheet cells.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
