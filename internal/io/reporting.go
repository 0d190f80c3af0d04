package io

import (
	"github.com/desertwitch/gomv/internal/plan"
)

// Reporter receives the progress of every step of an executing plan, along
// with its index in the plan.
type Reporter interface {
	StepStarted(index int, step plan.Action)
	StepFinished(index int, step plan.Action)
	StepFailed(index int, step plan.Action, err error)
}

type noopReporter struct{}

func (noopReporter) StepStarted(int, plan.Action)        {}
func (noopReporter) StepFinished(int, plan.Action)       {}
func (noopReporter) StepFailed(int, plan.Action, error) {}

// Summary describes a finished or stopped execution.
type Summary struct {
	// Moved counts all completed steps, including temporary ones.
	Moved int

	// Copied counts the steps which fell back to copying across devices.
	Copied int

	// CopiedBytes is the amount of data copied across devices.
	CopiedBytes int64

	// Temporary counts the completed steps involving temporary paths.
	Temporary int
}

type stepResult struct {
	copied bool
	bytes  int64
}

func (s *Summary) add(step plan.Action, result stepResult) {
	s.Moved++

	if step.Temporary {
		s.Temporary++
	}

	if result.copied {
		s.Copied++
		s.CopiedBytes += result.bytes
	}
}
