package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const (
	terminalHandler = "terminal"
	uiHandler       = "ui"
)

// SlogManager is a [slog.Handler] fanning records out to a set of named
// handlers, which can be swapped while the program runs. This routes logs
// into the progress interface while it is shown.
type SlogManager struct {
	sync.RWMutex

	handlers map[string]slog.Handler

	// derive replays the attributes and groups of derived loggers onto
	// handlers added later.
	derive []func(slog.Handler) slog.Handler
}

// NewSlogManager returns a pointer to a new, empty [SlogManager].
func NewSlogManager() *SlogManager {
	return &SlogManager{
		handlers: make(map[string]slog.Handler),
	}
}

// newTintHandler returns the terminal [slog.Handler] of the program.
func newTintHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
}

func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	var errs []error

	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derived(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

func (m *SlogManager) WithGroup(name string) slog.Handler {
	return m.derived(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

func (m *SlogManager) derived(op func(slog.Handler) slog.Handler) *SlogManager {
	m.RLock()
	defer m.RUnlock()

	child := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		derive:   append(append([]func(slog.Handler) slog.Handler{}, m.derive...), op),
	}

	for name, h := range m.handlers {
		child.handlers[name] = op(h)
	}

	return child
}

// AddHandler adds or replaces the handler of the given name.
func (m *SlogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	for _, op := range m.derive {
		handler = op(handler)
	}

	m.handlers[name] = handler
}

// RemoveHandler removes the handler of the given name, if it exists.
func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}

// GetHandler returns the handler of the given name.
//
//nolint:ireturn
func (m *SlogManager) GetHandler(name string) (slog.Handler, bool) {
	m.RLock()
	defer m.RUnlock()

	h, ok := m.handlers[name]

	return h, ok
}

// verbosityLevel maps the count of verbose flags to a log level.
func verbosityLevel(verbose int) slog.Level {
	switch {
	case verbose >= 2: //nolint:mnd
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
