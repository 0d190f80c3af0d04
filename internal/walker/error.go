package walker

import "errors"

// ErrWalkFailed is an error that occurs when a directory selected by a pattern
// exists but cannot be listed or inspected.
var ErrWalkFailed = errors.New("failed to walk pattern")
