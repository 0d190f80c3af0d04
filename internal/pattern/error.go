package pattern

import (
	"errors"
	"fmt"
)

// ErrPatternSyntax is the sentinel wrapped by every [SyntaxError].
var ErrPatternSyntax = errors.New("malformed pattern")

// SyntaxError describes a source pattern that cannot be used for matching.
type SyntaxError struct {
	Pattern string
	Offset  int
	Reason  string
}

func newSyntaxError(pattern string, offset int, reason string) *SyntaxError {
	return &SyntaxError{
		Pattern: pattern,
		Offset:  offset,
		Reason:  reason,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %q (at offset %d): %s", ErrPatternSyntax, e.Pattern, e.Offset, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrPatternSyntax
}
