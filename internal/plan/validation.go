package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Validator checks a batch of actions for conflicts before anything is moved.
type Validator struct {
	fsHandler fsProvider

	// CreateParents allows destinations whose parent directory is missing.
	CreateParents bool

	// NoClobber rejects destinations which exist and are not moved away.
	NoClobber bool
}

// NewValidator returns a pointer to a new [Validator].
func NewValidator(fsHandler fsProvider, createParents bool, noClobber bool) *Validator {
	return &Validator{
		fsHandler:     fsHandler,
		CreateParents: createParents,
		NoClobber:     noClobber,
	}
}

// Validate checks the whole batch and returns a [*ConflictError] carrying
// every conflict found, or nil if the batch is safe to schedule. It never
// modifies the filesystem.
func (v *Validator) Validate(actions []Action) error {
	conflicts := structuralConflicts(actions)
	conflicts = append(conflicts, nestingConflicts(actions)...)

	fsConflicts, err := v.filesystemConflicts(actions)
	if err != nil {
		return err
	}
	conflicts = append(conflicts, fsConflicts...)

	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	return nil
}

// structuralConflicts reports every pair of actions sharing a source or a
// destination. Without such pairs the actions form disjoint simple paths and
// simple cycles.
func structuralConflicts(actions []Action) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, sharedPairs(actions, ConflictSharedSource, func(a Action) string { return a.Source })...)
	conflicts = append(conflicts, sharedPairs(actions, ConflictSharedDestination, func(a Action) string { return a.Destination })...)

	return conflicts
}

func sharedPairs(actions []Action, kind ConflictKind, key func(Action) string) []Conflict {
	var conflicts []Conflict

	groups := make(map[string][]int, len(actions))
	order := []string{}

	for i, a := range actions {
		k := key(a)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		idx := groups[k]
		for x := range idx {
			for y := x + 1; y < len(idx); y++ {
				conflicts = append(conflicts, Conflict{
					Kind:    kind,
					Actions: []Action{actions[idx[x]], actions[idx[y]]},
				})
			}
		}
	}

	return conflicts
}

// nestingConflicts reports sources and destinations that lie below a source
// of the batch. Moving such a source would carry them along, so their order
// relative to it cannot be made safe.
func nestingConflicts(actions []Action) []Conflict {
	var conflicts []Conflict

	bySource := make(map[string]int, len(actions))
	for i, a := range actions {
		if _, exists := bySource[a.Source]; !exists {
			bySource[a.Source] = i
		}
	}

	for i, a := range actions {
		if j, ok := enclosingSource(a.Source, bySource); ok {
			conflicts = append(conflicts, Conflict{
				Kind:    ConflictNestedSource,
				Actions: []Action{actions[j], a},
			})
		}

		if j, ok := enclosingSource(a.Destination, bySource); ok {
			if j == i {
				conflicts = append(conflicts, Conflict{
					Kind:    ConflictIntoItself,
					Actions: []Action{a},
				})
			} else {
				conflicts = append(conflicts, Conflict{
					Kind:    ConflictDestinationInSource,
					Actions: []Action{actions[j], a},
				})
			}
		}
	}

	return conflicts
}

// enclosingSource returns the index of the closest source strictly above path.
func enclosingSource(path string, bySource map[string]int) (int, bool) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if j, ok := bySource[dir]; ok {
			return j, true
		}

		if dir == filepath.Dir(dir) {
			return 0, false
		}
	}
}

func (v *Validator) filesystemConflicts(actions []Action) ([]Conflict, error) {
	var conflicts []Conflict

	sources := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		sources[a.Source] = struct{}{}
	}

	for _, a := range actions {
		_, vacated := sources[a.Destination]

		srcInfo, err := v.lstat(a.Source)
		if err != nil {
			return nil, err
		}

		dstInfo, err := v.lstat(a.Destination)
		if err != nil {
			return nil, err
		}

		if dstInfo != nil && !vacated {
			switch {
			case dstInfo.IsDir():
				conflicts = append(conflicts, Conflict{Kind: ConflictOntoDirectory, Actions: []Action{a}})
			case srcInfo != nil && srcInfo.IsDir():
				conflicts = append(conflicts, Conflict{Kind: ConflictDirectoryOntoFile, Actions: []Action{a}})
			case v.NoClobber:
				conflicts = append(conflicts, Conflict{Kind: ConflictExistingDestination, Actions: []Action{a}})
			}
		}

		parentOk, err := v.parentUsable(filepath.Dir(a.Destination))
		if err != nil {
			return nil, err
		}
		if !parentOk {
			conflicts = append(conflicts, Conflict{Kind: ConflictMissingParent, Actions: []Action{a}})
		}
	}

	return conflicts, nil
}

// parentUsable reports if dir can receive a destination: it is an existing
// directory, or it is missing, parents may be created and its closest
// existing ancestor is a directory.
func (v *Validator) parentUsable(dir string) (bool, error) {
	fi, err := v.fsHandler.Stat(dir)
	if err != nil {
		if isMissing(err) {
			if !v.CreateParents || dir == filepath.Dir(dir) {
				return false, nil
			}

			return v.parentUsable(filepath.Dir(dir))
		}

		return false, fmt.Errorf("(plan-validate) %w: %s: %w", ErrInspectFailed, dir, err)
	}

	if fi.IsDir() {
		return true, nil
	}

	return false, nil
}

// lstat returns nil info for paths that do not exist.
func (v *Validator) lstat(path string) (os.FileInfo, error) {
	fi, err := v.fsHandler.Lstat(path)
	if err != nil {
		if isMissing(err) {
			return nil, nil //nolint:nilnil
		}

		return nil, fmt.Errorf("(plan-validate) %w: %s: %w", ErrInspectFailed, path, err)
	}

	return fi, nil
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR)
}
