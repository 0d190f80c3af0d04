package main

import (
	"errors"
	"log/slog"

	"github.com/desertwitch/gomv/internal/pattern"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/desertwitch/gomv/internal/substitution"
	"github.com/desertwitch/gomv/internal/walker"
)

const (
	exitSuccess    = 0
	exitValidation = 1
	exitPattern    = 2
	exitExecution  = 3
)

var (
	// ErrUsage occurs when the command line cannot be understood.
	ErrUsage = errors.New("invalid usage")

	// ErrInvalidExclude occurs when an exclude pattern is malformed.
	ErrInvalidExclude = errors.New("invalid exclude pattern")

	// ErrSetupFailed occurs when the program cannot establish what it needs
	// to run, before anything was looked at or moved.
	ErrSetupFailed = errors.New("setup failed")
)

// exitCode maps an error returned by the command to the exit code of the
// process. Failures to inspect the filesystem while planning or to allocate a
// temporary path for a cycle happen before any move, but are environmental
// rather than a fault of the batch, so they share [exitExecution] with failed
// moves and interruptions. Only a [*io.MoveExecutionError] carries a step index.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess

	case errors.Is(err, plan.ErrConflict):
		return exitValidation

	case errors.Is(err, ErrUsage),
		errors.Is(err, ErrInvalidExclude),
		errors.Is(err, pattern.ErrPatternSyntax),
		errors.Is(err, substitution.ErrTokenIndex),
		errors.Is(err, walker.ErrWalkFailed):
		return exitPattern

	case errors.Is(err, plan.ErrInspectFailed),
		errors.Is(err, plan.ErrTemporaryUnavailable):
		return exitExecution

	default:
		return exitExecution
	}
}

// reportError logs an error returned by the command, listing every conflict
// of a failed validation.
func reportError(logger *slog.Logger, err error) {
	var conflictErr *plan.ConflictError
	if errors.As(err, &conflictErr) {
		for _, c := range conflictErr.Conflicts {
			logger.Error("Conflict:", "kind", c.Kind.String(), "actions", c.String())
		}
		logger.Error("Nothing was moved, the batch is unsafe.", "conflicts", len(conflictErr.Conflicts))

		return
	}

	logger.Error("Failed:", "err", err)
}
