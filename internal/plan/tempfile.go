package plan

import (
	"fmt"
)

const (
	// TemporarySuffix is the suffix of temporary paths, followed by four
	// hexadecimal digits.
	TemporarySuffix = ".gomv"

	temporaryCandidates = 1 << 16
)

// allocateTemporary returns a path next to base which neither exists on the
// filesystem nor is taken by the batch. The suffixes are probed from a random
// starting point, wrapping around until every one was tried.
func (s *Scheduler) allocateTemporary(base string, taken map[string]struct{}) (string, error) {
	start := s.randomStart()

	var lastErr error

	for i := range temporaryCandidates {
		candidate := fmt.Sprintf("%s%s%04x", base, TemporarySuffix, uint16(int(start)+i)) //nolint:gosec

		if _, exists := taken[candidate]; exists {
			continue
		}

		if _, err := s.fsHandler.Lstat(candidate); err != nil {
			if isMissing(err) {
				return candidate, nil
			}
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("(plan-tempfile) %w", lastErr)
	}

	return "", fmt.Errorf("(plan-tempfile) all %d candidates are taken", temporaryCandidates)
}
