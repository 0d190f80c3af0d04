package plan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConflict is an error that occurs when a batch of actions cannot be
	// executed without losing data or failing halfway. It is wrapped by
	// every [ConflictError].
	ErrConflict = errors.New("conflicting actions")

	// ErrTemporaryUnavailable is an error that occurs when no free temporary
	// path could be found to break a cycle of actions. It is wrapped by every
	// [CycleTemporaryCreationError].
	ErrTemporaryUnavailable = errors.New("no temporary path available")

	// ErrInspectFailed is an error that occurs when the filesystem state of a
	// path cannot be established while building or validating actions.
	ErrInspectFailed = errors.New("failed to inspect path")
)

// ConflictKind describes the reason two actions, or a single action, cannot
// be part of a batch.
type ConflictKind int

const (
	// ConflictSharedSource is two actions moving the same source.
	ConflictSharedSource ConflictKind = iota

	// ConflictSharedDestination is two actions moving to the same destination.
	ConflictSharedDestination

	// ConflictDirectoryOntoFile is a directory moved onto an existing plain
	// file which the batch does not move away.
	ConflictDirectoryOntoFile

	// ConflictOntoDirectory is a destination which is an existing directory
	// the batch does not move away.
	ConflictOntoDirectory

	// ConflictIntoItself is a directory moved to a path below itself.
	ConflictIntoItself

	// ConflictNestedSource is a source below another action's source.
	ConflictNestedSource

	// ConflictDestinationInSource is a destination below another action's
	// source.
	ConflictDestinationInSource

	// ConflictMissingParent is a destination whose parent directory does not
	// exist.
	ConflictMissingParent

	// ConflictExistingDestination is a destination which exists and is not
	// moved away by the batch, while overwriting is disabled.
	ConflictExistingDestination
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictSharedSource:
		return "shared source"
	case ConflictSharedDestination:
		return "shared destination"
	case ConflictDirectoryOntoFile:
		return "directory onto file"
	case ConflictOntoDirectory:
		return "destination is an existing directory"
	case ConflictIntoItself:
		return "directory into itself"
	case ConflictNestedSource:
		return "source inside another source"
	case ConflictDestinationInSource:
		return "destination inside another source"
	case ConflictMissingParent:
		return "missing parent directory"
	case ConflictExistingDestination:
		return "destination exists"
	}

	return fmt.Sprintf("ConflictKind(%d)", int(k))
}

// Conflict is a single violation found in a batch. Actions holds the
// offending pair, or a single action for violations of one action alone.
type Conflict struct {
	Kind    ConflictKind
	Actions []Action
}

func (c Conflict) String() string {
	parts := make([]string, 0, len(c.Actions))
	for _, a := range c.Actions {
		parts = append(parts, a.String())
	}

	return c.Kind.String() + ": " + strings.Join(parts, " / ")
}

// ConflictError carries every violation found in a batch.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.String())
	}

	return fmt.Sprintf("%s (%d): %s", ErrConflict, len(e.Conflicts), strings.Join(parts, "; "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// CycleTemporaryCreationError reports a cycle of actions for which no
// temporary path was available.
type CycleTemporaryCreationError struct {
	Cycle []Action
	Base  string
	Err   error
}

func (e *CycleTemporaryCreationError) Error() string {
	msg := fmt.Sprintf("%s for cycle of %d actions at %s", ErrTemporaryUnavailable, len(e.Cycle), e.Base)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *CycleTemporaryCreationError) Unwrap() error {
	return ErrTemporaryUnavailable
}
