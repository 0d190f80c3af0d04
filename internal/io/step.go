package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/desertwitch/gomv/internal/plan"
	"golang.org/x/sys/unix"
)

const parentPerms fs.FileMode = 0o755

func (i *Handler) executeStep(ctx context.Context, step plan.Action) (stepResult, error) {
	if _, err := i.fsHandler.Lstat(step.Source); err != nil {
		if isMissing(err) {
			return stepResult{}, fmt.Errorf("(io-step) %w: %s", ErrSourceMissing, step.Source)
		}

		return stepResult{}, fmt.Errorf("(io-step) failed to stat source: %w", classify(err))
	}

	if i.options.CheckInUse && i.fsHandler.IsInUse(step.Source) {
		return stepResult{}, fmt.Errorf("(io-step) %w: %s", ErrSourceFileInUse, step.Source)
	}

	if err := i.ensureParent(step.Destination); err != nil {
		return stepResult{}, err
	}

	err := i.fsHandler.Rename(step.Source, step.Destination)
	if err == nil {
		return stepResult{}, nil
	}

	if !errors.Is(err, unix.EXDEV) {
		return stepResult{}, fmt.Errorf("(io-step) failed to rename: %w", classify(err))
	}

	bytes, err := i.moveAcrossDevices(ctx, step.Source, step.Destination)
	if err != nil {
		return stepResult{}, fmt.Errorf("(io-step) %w: %w", ErrCrossDevice, err)
	}

	return stepResult{copied: true, bytes: bytes}, nil
}

func (i *Handler) ensureParent(dst string) error {
	parent := filepath.Dir(dst)

	if i.options.CreateParents {
		if err := i.fsHandler.MkdirAll(parent, parentPerms); err != nil {
			return fmt.Errorf("(io-parent) failed to create %s: %w", parent, classify(err))
		}

		return nil
	}

	info, err := i.fsHandler.Stat(parent)
	if err != nil {
		if isMissing(err) {
			return fmt.Errorf("(io-parent) %w: %s", ErrDestinationParentMissing, parent)
		}

		return fmt.Errorf("(io-parent) failed to stat %s: %w", parent, classify(err))
	}

	if !info.IsDir() {
		return fmt.Errorf("(io-parent) %w: %s is not a directory", ErrDestinationParentMissing, parent)
	}

	return nil
}

// classify maps operating system errors to the sentinels of this package,
// leaving the original error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)

	case errors.Is(err, unix.ENOTDIR):
		return fmt.Errorf("%w: %w", ErrDestinationParentMissing, err)

	default:
		return err
	}
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR)
}
