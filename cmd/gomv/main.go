package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/desertwitch/gomv/internal/configuration"
	"github.com/desertwitch/gomv/internal/filesystem"
	"github.com/desertwitch/gomv/internal/io"
	"github.com/desertwitch/gomv/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	logLevel = new(slog.LevelVar)
)

const longHelp = `Move every path matched by SOURCE to the destination built from DEST.

SOURCE is a path pattern. In every path component, "*" matches any run of
characters and "?" matches exactly one character, never crossing a "/".

DEST is a path where "#N" is replaced by the text matched by the N-th
wildcard of SOURCE, counting from 1. "#{N}" separates the number from
following digits, "##" is a literal "#".

The whole batch is checked before anything moves. Batches with conflicting
moves are refused, chains and cycles of moves are ordered so that no file is
ever overwritten before it has moved on.

Example:
  gomv '*_test.py' 'tests/test_#1.py'`

// cliOptions hold the flags of the root command.
type cliOptions struct {
	configPath  string
	dryRun      bool
	interactive bool
	verbose     int
	parents     bool
	noClobber   bool
	exclude     []string
	ui          bool
	checkInUse  bool
	noVerify    bool
}

func setupLogging() *SlogManager {
	logLevel.Set(slog.LevelWarn)

	manager := NewSlogManager()
	manager.AddHandler(terminalHandler, newTintHandler(os.Stderr, logLevel, !isatty.IsTerminal(os.Stderr.Fd())))
	slog.SetDefault(slog.New(manager))

	return manager
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		slog.Warn("Interrupted: stopping before the next move.")
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen]) //nolint:errcheck
		}
	}()
}

func newRootCommand(cancel context.CancelFunc, logManager *SlogManager) *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:     "gomv [flags] SOURCE DEST",
		Short:   "Move many files at once, using wildcards",
		Long:    longHelp,
		Version: Version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 { //nolint:mnd
				return fmt.Errorf("%w: expected SOURCE and DEST, got %d argument(s)", ErrUsage, len(args))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, cancel, logManager, args[0], args[1])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	flags := cmd.Flags()
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "show what would be moved, without moving anything")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "ask before every move")
	flags.CountVarP(&opts.verbose, "verbose", "v", "print every move (-vv for debug logs)")
	flags.BoolVarP(&opts.parents, "parents", "p", false, "create missing parent directories of destinations")
	flags.BoolVar(&opts.noClobber, "no-clobber", false, "refuse to overwrite existing destinations")
	flags.StringArrayVar(&opts.exclude, "exclude", nil, "skip matched paths selected by this glob (repeatable, supports **)")
	flags.BoolVar(&opts.ui, "ui", false, "show a progress interface while moving")
	flags.StringVar(&opts.configPath, "config", "", "configuration file (default "+configuration.DefaultPath()+")")
	flags.BoolVar(&opts.checkInUse, "check-in-use", false, "refuse to move paths held open by other processes")
	flags.BoolVar(&opts.noVerify, "no-verify", false, "skip checksums when copying across filesystems")

	return cmd
}

// loadSettings reads the configuration and lets explicitly given flags take
// precedence over it.
func loadSettings(cmd *cobra.Command, opts *cliOptions) (configuration.Settings, error) {
	settings, err := configuration.NewHandler(&configuration.GodotenvProvider{}).Load(opts.configPath)
	if err != nil {
		return settings, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	flags := cmd.Flags()

	if flags.Changed("dry-run") {
		settings.DryRun = opts.dryRun
	}
	if flags.Changed("interactive") {
		settings.Interactive = opts.interactive
	}
	if flags.Changed("verbose") {
		settings.Verbose = opts.verbose
	}
	if flags.Changed("parents") {
		settings.Parents = opts.parents
	}
	if flags.Changed("no-clobber") {
		settings.NoClobber = opts.noClobber
	}
	if flags.Changed("check-in-use") {
		settings.CheckInUse = opts.checkInUse
	}
	if flags.Changed("no-verify") {
		settings.VerifyCopy = !opts.noVerify
	}

	settings.Exclude = append(settings.Exclude, opts.exclude...)

	return settings, nil
}

func run(cmd *cobra.Command, opts *cliOptions, cancel context.CancelFunc, logManager *SlogManager, src string, dst string) error {
	ctx := cmd.Context()

	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	logLevel.Set(verbosityLevel(settings.Verbose))

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("%w: failed to get working directory: %w", ErrSetupFailed, err)
	}

	fsHandler := filesystem.NewOsHandler(nil)
	if settings.CheckInUse {
		inUseChecker, err := filesystem.NewInUseChecker(ctx, fsHandler)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSetupFailed, err)
		}
		fsHandler = filesystem.NewOsHandler(inUseChecker)
	}

	useUI := opts.ui && !settings.DryRun
	renderer := ui.NewPlanRenderer(os.Stdout, workDir, isatty.IsTerminal(os.Stdout.Fd()))

	var reporter io.Reporter
	if settings.Verbose > 0 && !useUI {
		reporter = renderer
	}

	ioHandler := io.NewHandler(fsHandler, reporter, io.Options{
		CreateParents: settings.Parents,
		CheckInUse:    settings.CheckInUse,
		VerifyCopy:    settings.VerifyCopy,
		SpaceChecker:  filesystem.NewDiskUsage(filesystem.UnixStatfs{}),
	})

	var confirmer confirmProvider
	if settings.Interactive && !settings.DryRun {
		c, err := ui.NewConfirmer(renderer, os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		confirmer = c
	}

	var tuiHandler *ui.Handler
	if useUI {
		tuiHandler = ui.NewHandler(ctx, cancel, ioHandler)
	}

	app := NewApp(AppOptions{
		WorkDir:       workDir,
		DryRun:        settings.DryRun,
		CreateParents: settings.Parents,
		NoClobber:     settings.NoClobber,
		Exclude:       settings.Exclude,
	}, fsHandler, ioHandler, renderer, confirmer, tuiHandler, logManager)

	return app.Launch(ctx, src, dst)
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logManager := setupLogging()
	setupSignalHandlers(cancel)

	if err := newRootCommand(cancel, logManager).ExecuteContext(ctx); err != nil {
		ExitCode = exitCode(err)
		reportError(slog.Default(), err)
	}
}
