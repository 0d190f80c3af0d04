package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excludeFilter drops matched paths selected by any of its patterns. The
// patterns are matched against the paths relative to the working directory,
// or against the absolute paths outside of it.
type excludeFilter struct {
	workDir  string
	patterns []string
}

func newExcludeFilter(workDir string, patterns []string) (*excludeFilter, error) {
	filter := &excludeFilter{
		workDir:  workDir,
		patterns: make([]string, 0, len(patterns)),
	}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("(main-exclude) %w: %q", ErrInvalidExclude, p)
		}

		filter.patterns = append(filter.patterns, p)
	}

	return filter, nil
}

// Excluded checks if a path is selected by any of the patterns.
func (f *excludeFilter) Excluded(path string) bool {
	candidate := path
	if rel, err := filepath.Rel(f.workDir, path); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
		candidate = rel
	}
	candidate = filepath.ToSlash(candidate)

	for _, p := range f.patterns {
		if ok, err := doublestar.Match(p, candidate); err == nil && ok {
			return true
		}
	}

	return false
}
