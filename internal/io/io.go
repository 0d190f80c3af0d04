// Package io implements the executor which carries out a scheduled plan one
// move at a time, falling back to a verified copy when a move crosses
// filesystem boundaries.
package io

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/desertwitch/gomv/internal/filesystem"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/desertwitch/gomv/internal/queue"
	"github.com/spf13/afero"
)

// fsProvider defines methods needed to carry out moves on a filesystem.
type fsProvider interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.FileInfo, error)
	Readlink(name string) (string, error)
	Symlink(oldname, newname string) error
	Rename(oldname, newname string) error
	Remove(name string) error
	RemoveAll(path string) error
	Mkdir(name string, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (afero.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (afero.File, error)
	Chmod(name string, mode os.FileMode) error
	Chown(name string, uid, gid int) error
	Chtimes(name string, atime time.Time, mtime time.Time) error
	Metadata(path string) (*filesystem.Metadata, error)
	IsInUse(path string) bool
}

// SpaceChecker reports if the filesystem containing a path can house more
// bytes.
type SpaceChecker interface {
	HasEnoughFreeSpace(path string, size uint64) (bool, error)
}

// Options control how the [Handler] executes moves.
type Options struct {
	// CreateParents creates missing parent directories of destinations.
	CreateParents bool

	// CheckInUse refuses to move sources which are held open by another
	// process.
	CheckInUse bool

	// VerifyCopy compares checksums of both sides when a move falls back
	// to copying.
	VerifyCopy bool

	// SpaceChecker, when set, is consulted before a move falls back to
	// copying across filesystem boundaries.
	SpaceChecker SpaceChecker
}

// Handler is the principal implementation for the executor.
type Handler struct {
	fsHandler fsProvider
	reporter  Reporter
	options   Options
	queue     *queue.GenericQueue[int]
}

// NewHandler returns a pointer to a new executor [Handler]. The reporter may
// be nil.
func NewHandler(fsHandler fsProvider, reporter Reporter, options Options) *Handler {
	if reporter == nil {
		reporter = noopReporter{}
	}

	return &Handler{
		fsHandler: fsHandler,
		reporter:  reporter,
		options:   options,
		queue:     queue.NewGenericQueue[int](),
	}
}

// Progress returns the progress of the executing plan. It is safe to call
// while [Handler.Execute] is running.
func (i *Handler) Progress() queue.Progress {
	return i.queue.Progress()
}

// Execute carries out the steps strictly in the given order. The context is
// checked before every step, so a cancellation stops the plan before the
// next move. The first failing step stops the plan and is returned as a
// [*MoveExecutionError]; steps which already completed are not rolled back.
func (i *Handler) Execute(ctx context.Context, steps []plan.Action) (Summary, error) {
	var summary Summary
	var execErr *MoveExecutionError

	indices := make([]int, len(steps))
	for idx := range steps {
		indices[idx] = idx
	}
	i.queue.Enqueue(indices...)

	err := i.queue.DequeueAndProcess(ctx, func(idx int) int {
		step := steps[idx]

		i.reporter.StepStarted(idx, step)

		result, err := i.executeStep(ctx, step)
		if err != nil {
			execErr = &MoveExecutionError{Index: idx, Step: step, Err: err}
			i.reporter.StepFailed(idx, step, err)

			return queue.DecisionAbort
		}

		summary.add(step, result)
		i.reporter.StepFinished(idx, step)

		slog.Debug("Moved:", "step", idx, "src", step.Source, "dst", step.Destination, "copied", result.copied)

		return queue.DecisionSuccess
	})

	if execErr != nil {
		return summary, execErr
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return summary, fmt.Errorf("(io) %w: %w", ErrContextError, err)
		}

		return summary, fmt.Errorf("(io) %w", err)
	}

	return summary, nil
}
