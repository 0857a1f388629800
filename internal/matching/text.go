package matching

import (
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

// FoldEqual reports whether a and b are equal under Unicode case folding.
func FoldEqual(a, b string) bool {
	// A Caser holds state, so each call gets its own.
	return cases.Fold().String(a) == cases.Fold().String(b)
}

// ValidGlob reports whether pattern is a valid doublestar pattern.
func ValidGlob(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// Glob matches s against a doublestar pattern where ** spans separators.
func Glob(pattern, s string) bool {
	ok, err := doublestar.Match(pattern, s)
	return err == nil && ok
}
