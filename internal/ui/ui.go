// Package ui implements the user-facing parts of the command-line interface:
// rendering of plans, interactive confirmations and a progress interface
// using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/gomv/internal/queue"
)

// progressProvider defines methods needed to observe an executing plan.
type progressProvider interface {
	Progress() queue.Progress
}

// Handler is the principal implementation of the progress user interface.
type Handler struct {
	progressHandler progressProvider
	program         *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler]. The cancel
// function is called when the user interrupts the interface.
func NewHandler(ctx context.Context, cancel context.CancelFunc, progressHandler progressProvider) *Handler {
	handler := &Handler{
		progressHandler: progressHandler,
	}

	model := NewTeaModel(handler, progressHandler, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the user interface (the [tea.Program]) and blocks until it
// ends.
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Quit ends the user interface once the plan is done.
func (uiHandler *Handler) Quit() {
	uiHandler.program.Quit()
}
