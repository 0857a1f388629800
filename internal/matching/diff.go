package matching

import (
	"errors"
	"fmt"
	"strings"
)

// Side names which operand of a comparison failed to parse.
type Side string

const (
	SideExpected Side = "expected"
	SideActual   Side = "actual"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("structural parse failed")

// ParseError reports that a document could not be parsed in the declared format.
type ParseError struct {
	Format string
	Side   Side
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s value is not valid %s: %v", e.Side, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse equivalence.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Difference is one structural difference between two documents.
type Difference struct {
	Path     string
	Message  string
	Expected string
	Actual   string
}

func (d Difference) String() string {
	if d.Expected == "" && d.Actual == "" {
		return d.Path + ": " + d.Message
	}
	return fmt.Sprintf("%s: %s: expected %s but was %s", d.Path, d.Message, d.Expected, d.Actual)
}

// FormatDifferences renders differences one per line.
func FormatDifferences(diffs []Difference) string {
	lines := make([]string, len(diffs))
	for i, d := range diffs {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
