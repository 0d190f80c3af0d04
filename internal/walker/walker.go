// Package walker resolves a parsed source pattern against the filesystem,
// producing the existing paths it selects together with the substrings
// captured by its wildcards.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/desertwitch/gomv/internal/pattern"
	"golang.org/x/sys/unix"
)

// fsProvider defines methods needed to look up and list the filesystem.
type fsProvider interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.FileInfo, error)
}

// Match is an existing path selected by a pattern.
type Match struct {
	// Path is the cleaned path, joined from the walk root.
	Path string

	// Captures holds one entry per wildcard of the pattern, in the order the
	// wildcards appear from left to right.
	Captures []string
}

// Handler is the principal implementation of the pattern walker.
type Handler struct {
	fsHandler fsProvider
}

// NewHandler returns a pointer to a new walker [Handler].
func NewHandler(fsHandler fsProvider) *Handler {
	return &Handler{
		fsHandler: fsHandler,
	}
}

// Walk lazily resolves p below root. Relative patterns start at root, absolute
// patterns at the filesystem root. Matches are produced depth-first, with
// directory entries visited in byte-wise name order.
//
// A path that is not a directory while segments remain simply has no
// children. A directory that exists but cannot be listed yields a single
// error wrapping [ErrWalkFailed], after which the sequence ends. The sequence
// also ends with the context's error when ctx is cancelled.
func (w *Handler) Walk(ctx context.Context, root string, p *pattern.Pattern) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		_, err := w.walk(ctx, filepath.Clean(root), p.Segments, nil, yield)
		if err != nil {
			yield(Match{}, err)
		}
	}
}

// walk resolves segs below dir. It returns false once the consumer stopped
// the iteration.
func (w *Handler) walk(ctx context.Context, dir string, segs []pattern.Segment, captures []string, yield func(Match, error) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("(walker) %w", err)
	}

	seg, rest := segs[0], segs[1:]

	switch seg.Kind {
	case pattern.KindRoot:
		return w.walk(ctx, string(filepath.Separator), rest, captures, yield)

	case pattern.KindCurrent:
		return w.walk(ctx, dir, rest, captures, yield)

	case pattern.KindParent:
		return w.walk(ctx, filepath.Dir(dir), rest, captures, yield)

	case pattern.KindLiteral:
		return w.descend(ctx, filepath.Join(dir, seg.Text), rest, captures, yield)

	case pattern.KindWildcard:
		entries, err := w.fsHandler.ReadDir(dir)
		if err != nil {
			if isMissing(err) {
				return true, nil
			}

			return false, fmt.Errorf("(walker) %w: %s: %w", ErrWalkFailed, dir, err)
		}

		for _, entry := range entries {
			segCaptures, ok := seg.Match(entry.Name())
			if !ok {
				continue
			}

			cont, err := w.descend(ctx, filepath.Join(dir, entry.Name()), rest, slices.Concat(captures, segCaptures), yield)
			if err != nil || !cont {
				return cont, err
			}
		}
	}

	return true, nil
}

// descend handles a path that matched its segment: it is either yielded as a
// match, or walked into when further segments remain.
func (w *Handler) descend(ctx context.Context, path string, rest []pattern.Segment, captures []string, yield func(Match, error) bool) (bool, error) {
	if len(rest) == 0 {
		if _, err := w.fsHandler.Lstat(path); err != nil {
			if isMissing(err) {
				return true, nil
			}

			return false, fmt.Errorf("(walker) %w: %s: %w", ErrWalkFailed, path, err)
		}

		return yield(Match{Path: path, Captures: captures}, nil), nil
	}

	fi, err := w.fsHandler.Stat(path)
	if err != nil {
		if isMissing(err) {
			return true, nil
		}

		return false, fmt.Errorf("(walker) %w: %s: %w", ErrWalkFailed, path, err)
	}

	if !fi.IsDir() {
		return true, nil
	}

	return w.walk(ctx, path, rest, captures, yield)
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR)
}
