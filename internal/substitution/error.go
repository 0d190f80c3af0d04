package substitution

import (
	"errors"
	"fmt"
)

// ErrTokenIndex is the sentinel wrapped by every [TokenIndexError].
var ErrTokenIndex = errors.New("capture token out of range")

// TokenIndexError reports a capture token that does not refer to an existing
// capture. Token holds the text after the '#' as written in the destination.
// Malformed is set when that text is not a capture index at all.
type TokenIndexError struct {
	Destination string
	Offset      int
	Token       string
	Available   int
	Malformed   bool
}

func (e *TokenIndexError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("%s: malformed token #%s in %q (at offset %d), expected #N, #{N} or ##",
			ErrTokenIndex, e.Token, e.Destination, e.Offset)
	}

	return fmt.Sprintf("%s: #%s in %q (at offset %d), only %d captures available",
		ErrTokenIndex, e.Token, e.Destination, e.Offset, e.Available)
}

func (e *TokenIndexError) Unwrap() error {
	return ErrTokenIndex
}
