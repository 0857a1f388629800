package expect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidExpectation is returned for malformed patterns and builder misuse.
	ErrInvalidExpectation = errors.New("invalid expectation")

	// ErrStructural is matched by every *StructuralError.
	ErrStructural = errors.New("structural comparison failed")
)

// StructuralError reports that a structural comparison could not be carried
// out because one side is not valid in the declared format.
type StructuralError struct {
	Format string
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("cannot compare as %s: %v", e.Format, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is reports ErrStructural equivalence.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpectation, fmt.Sprintf(format, args...))
}
