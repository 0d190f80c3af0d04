package plan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertwitch/gomv/internal/substitution"
	"github.com/desertwitch/gomv/internal/walker"
)

// fsProvider defines methods needed to inspect the filesystem.
type fsProvider interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
}

// Builder turns matches and a destination template into actions.
type Builder struct {
	fsHandler fsProvider
	workDir   string
}

// NewBuilder returns a pointer to a new [Builder]. Relative destinations are
// resolved against workDir.
func NewBuilder(fsHandler fsProvider, workDir string) *Builder {
	return &Builder{
		fsHandler: fsHandler,
		workDir:   workDir,
	}
}

// Build substitutes the captures of every match into destPattern and returns
// one action per match, in match order.
//
// When a destination ends in a separator, or names an existing directory that
// the batch does not move away, the source's base name is appended to it.
// Actions whose source and destination are equal are dropped.
func (b *Builder) Build(matches []walker.Match, destPattern string) ([]Action, error) {
	type pending struct {
		action   Action
		intoDir  bool
		original string
	}

	pendings := make([]pending, 0, len(matches))
	sources := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		dest, err := substitution.Substitute(destPattern, m.Captures)
		if err != nil {
			return nil, fmt.Errorf("(plan-build) %w", err)
		}

		src := b.resolve(m.Path)
		sources[src] = struct{}{}

		pendings = append(pendings, pending{
			action:   Action{Source: src, Destination: b.resolve(dest)},
			intoDir:  strings.HasSuffix(dest, string(filepath.Separator)),
			original: dest,
		})
	}

	actions := make([]Action, 0, len(pendings))

	for _, p := range pendings {
		a := p.action

		into := p.intoDir
		if !into {
			if _, vacated := sources[a.Destination]; !vacated {
				isDir, err := b.isDir(a.Destination)
				if err != nil {
					return nil, err
				}
				into = isDir
			}
		}

		if into {
			a.Destination = filepath.Join(a.Destination, filepath.Base(a.Source))
		}

		if a.Source == a.Destination {
			slog.Debug("Skipped action: source equals destination", "src", a.Source, "dst", p.original)

			continue
		}

		actions = append(actions, a)
	}

	return actions, nil
}

func (b *Builder) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.workDir, path)
	}

	return filepath.Clean(path)
}

func (b *Builder) isDir(path string) (bool, error) {
	fi, err := b.fsHandler.Stat(path)
	if err != nil {
		if isMissing(err) {
			return false, nil
		}

		return false, fmt.Errorf("(plan-build) %w: %s: %w", ErrInspectFailed, path, err)
	}

	return fi.IsDir(), nil
}
