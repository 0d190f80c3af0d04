package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/desertwitch/gomv/internal/filesystem"
	"github.com/desertwitch/gomv/internal/io"
	"github.com/desertwitch/gomv/internal/pattern"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/desertwitch/gomv/internal/ui"
	"github.com/desertwitch/gomv/internal/walker"
	"github.com/dustin/go-humanize"
)

const uiWaitInterval = 10 * time.Millisecond

type confirmProvider interface {
	Confirm(ctx context.Context, actions []plan.Action) ([]plan.Action, error)
}

type executeProvider interface {
	Execute(ctx context.Context, steps []plan.Action) (io.Summary, error)
}

// AppOptions hold the behavior of a single run of the [App].
type AppOptions struct {
	WorkDir       string
	DryRun        bool
	CreateParents bool
	NoClobber     bool
	Exclude       []string
}

// App is the principal implementation of the program, carrying one batch of
// moves from the patterns to the finished execution.
type App struct {
	options AppOptions

	fsHandler   *filesystem.Handler
	walkHandler *walker.Handler
	ioHandler   executeProvider
	renderer    *ui.PlanRenderer
	confirmer   confirmProvider

	uiHandler  *ui.Handler
	logManager *SlogManager
}

// NewApp returns a pointer to a new [App]. The confirmer and the uiHandler
// are optional.
func NewApp(options AppOptions,
	fsHandler *filesystem.Handler,
	ioHandler executeProvider,
	renderer *ui.PlanRenderer,
	confirmer confirmProvider,
	uiHandler *ui.Handler,
	logManager *SlogManager,
) *App {
	return &App{
		options:     options,
		fsHandler:   fsHandler,
		walkHandler: walker.NewHandler(fsHandler),
		ioHandler:   ioHandler,
		renderer:    renderer,
		confirmer:   confirmer,
		uiHandler:   uiHandler,
		logManager:  logManager,
	}
}

// Launch plans the batch moving everything matched by srcPattern to the
// destinations derived from destPattern, and executes it unless it is a dry
// run. Nothing is moved if the batch is unsafe.
func (app *App) Launch(ctx context.Context, srcPattern string, destPattern string) error {
	p, err := pattern.Parse(srcPattern)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	matches, err := app.collect(ctx, p)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	if len(matches) == 0 {
		slog.Warn("No paths matched the source pattern.", "pattern", srcPattern)

		return nil
	}

	actions, err := app.plan(matches, destPattern)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	if app.confirmer != nil {
		actions, err = app.confirm(ctx, actions)
		if err != nil {
			return fmt.Errorf("(app) %w", err)
		}
	}

	if len(actions) == 0 {
		slog.Info("Nothing to move.")

		return nil
	}

	steps, err := plan.NewScheduler(app.fsHandler).Schedule(actions)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	if app.options.DryRun {
		if err := app.renderer.Render(steps); err != nil {
			return fmt.Errorf("(app) %w", err)
		}

		return nil
	}

	app.renderer.Align(steps)

	summary, err := app.execute(ctx, steps)

	slog.Info("Done:",
		"moved", summary.Moved,
		"temporary", summary.Temporary,
		"copied", summary.Copied,
		"copied_size", humanize.Bytes(uint64(max(summary.CopiedBytes, 0))),
	)

	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}

// collect walks the source pattern from the working directory and drops
// excluded matches.
func (app *App) collect(ctx context.Context, p *pattern.Pattern) ([]walker.Match, error) {
	filter, err := newExcludeFilter(app.options.WorkDir, app.options.Exclude)
	if err != nil {
		return nil, err
	}

	var matches []walker.Match

	for match, err := range app.walkHandler.Walk(ctx, app.options.WorkDir, p) {
		if err != nil {
			return nil, fmt.Errorf("(app-collect) %w", err)
		}

		if filter.Excluded(match.Path) {
			slog.Debug("Excluded:", "path", match.Path)

			continue
		}

		matches = append(matches, match)
	}

	return matches, nil
}

func (app *App) plan(matches []walker.Match, destPattern string) ([]plan.Action, error) {
	actions, err := plan.NewBuilder(app.fsHandler, app.options.WorkDir).Build(matches, destPattern)
	if err != nil {
		return nil, fmt.Errorf("(app-plan) %w", err)
	}

	if err := app.validate(actions); err != nil {
		return nil, err
	}

	return actions, nil
}

func (app *App) validate(actions []plan.Action) error {
	validator := plan.NewValidator(app.fsHandler, app.options.CreateParents, app.options.NoClobber)

	if err := validator.Validate(actions); err != nil {
		return fmt.Errorf("(app-validate) %w", err)
	}

	return nil
}

// confirm asks for every action before anything moves. The approved subset
// is a new batch and is validated again, so declined actions cannot break
// the ordering of the remaining ones.
func (app *App) confirm(ctx context.Context, actions []plan.Action) ([]plan.Action, error) {
	approved, err := app.confirmer.Confirm(ctx, actions)
	if err != nil {
		return nil, fmt.Errorf("(app-confirm) %w", err)
	}

	if len(approved) == 0 || len(approved) == len(actions) {
		return approved, nil
	}

	if err := app.validate(approved); err != nil {
		return nil, err
	}

	return approved, nil
}

// execute runs the plan, showing the progress interface while it runs if
// one is configured.
func (app *App) execute(ctx context.Context, steps []plan.Action) (io.Summary, error) {
	if app.uiHandler == nil {
		return app.ioHandler.Execute(ctx, steps) //nolint:wrapcheck
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go app.launchUI(&wg)

	for !app.uiHandler.Ready.Load() && !app.uiHandler.Failed.Load() {
		select {
		case <-ctx.Done():
			app.uiHandler.Quit()
			wg.Wait()

			return io.Summary{}, fmt.Errorf("(app-execute) %w: %w", io.ErrContextError, ctx.Err())
		case <-time.After(uiWaitInterval):
		}
	}

	summary, err := app.ioHandler.Execute(ctx, steps)

	app.uiHandler.Quit()
	wg.Wait()

	return summary, err //nolint:wrapcheck
}

func (app *App) launchUI(wg *sync.WaitGroup) {
	defer wg.Done()

	terminal, hasTerminal := app.logManager.GetHandler(terminalHandler)

	app.logManager.RemoveHandler(terminalHandler)
	app.logManager.AddHandler(uiHandler, newTintHandler(app.uiHandler.LogWriter, logLevel, false))

	err := app.uiHandler.Launch()

	app.logManager.RemoveHandler(uiHandler)
	if hasTerminal {
		app.logManager.AddHandler(terminalHandler, terminal)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("UI failure: falling back to terminal.", "err", err)
	}
}
