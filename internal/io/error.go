package io

import (
	"errors"
	"fmt"

	"github.com/desertwitch/gomv/internal/plan"
)

var (
	// ErrMoveExecution is an error that occurs when a step of a plan fails.
	// It is wrapped by every [MoveExecutionError].
	ErrMoveExecution = errors.New("move execution failed")

	// ErrSourceMissing is an error that occurs when the source of a step no
	// longer exists.
	ErrSourceMissing = errors.New("source does not exist")

	// ErrDestinationParentMissing is an error that occurs when the parent
	// directory of a destination does not exist.
	ErrDestinationParentMissing = errors.New("destination parent directory does not exist")

	// ErrCrossDevice is an error that occurs when the copy fallback of a
	// move across filesystem boundaries fails.
	ErrCrossDevice = errors.New("failed to move across devices")

	// ErrPermissionDenied is an error that occurs when the operating system
	// refuses a move for lack of permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSourceFileInUse is an error that occurs when the source is held open
	// by another process.
	ErrSourceFileInUse = errors.New("source is currently in use")

	// ErrNotEnoughSpace is an error that occurs when the destination
	// filesystem cannot house the copy of a source.
	ErrNotEnoughSpace = errors.New("not enough free space on destination")

	// ErrScratchUnavailable is an error that occurs when no unused scratch
	// name is left next to a destination.
	ErrScratchUnavailable = errors.New("no scratch name available")

	// ErrHashMismatch is an error that occurs when there is a source/destination
	// hash mismatch, this usually means that there are underlying
	// transfer/hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrContextError is an error that occurs when the execution was stopped
	// by its context before all steps were carried out.
	ErrContextError = errors.New("execution stopped")
)

// MoveExecutionError reports the step which stopped a plan. Index is the
// position of Step in the executed plan.
type MoveExecutionError struct {
	Index int
	Step  plan.Action
	Err   error
}

func (e *MoveExecutionError) Error() string {
	return fmt.Sprintf("%s at step %d (%s): %v", ErrMoveExecution, e.Index, e.Step, e.Err)
}

func (e *MoveExecutionError) Unwrap() []error {
	return []error{ErrMoveExecution, e.Err}
}
