package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/desertwitch/gomv/internal/filesystem"
	"github.com/desertwitch/gomv/internal/io"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/desertwitch/gomv/internal/ui"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, actions []plan.Action) ([]plan.Action, error) {
	args := m.Called(ctx, actions)

	approved, _ := args.Get(0).([]plan.Action)

	return approved, args.Error(1)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, steps []plan.Action) (io.Summary, error) {
	args := m.Called(ctx, steps)

	summary, _ := args.Get(0).(io.Summary)

	return summary, args.Error(1)
}

type testApp struct {
	*App
	fs  afero.Fs
	out *bytes.Buffer
}

func newTestApp(t *testing.T, options AppOptions, files ...string) *testApp {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/w", 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte(f), 0o644))
	}

	if options.WorkDir == "" {
		options.WorkDir = "/w"
	}

	fsh := filesystem.NewHandler(fs, nil)
	out := &bytes.Buffer{}

	app := NewApp(options, fsh,
		io.NewHandler(fsh, nil, io.Options{VerifyCopy: true}),
		ui.NewPlanRenderer(out, options.WorkDir, false),
		nil, nil, NewSlogManager(),
	)

	return &testApp{App: app, fs: fs, out: out}
}

func (ta *testApp) content(t *testing.T, path string) string {
	t.Helper()

	data, err := afero.ReadFile(ta.fs, path)
	require.NoError(t, err, "%s should be readable", path)

	return string(data)
}

// TestLaunch_Success tests a batch of renames through wildcards and tokens.
func TestLaunch_Success(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{CreateParents: true}, "/w/foo_test.py", "/w/bar_test.py", "/w/baz.py")

	require.NoError(t, app.Launch(t.Context(), "*_test.py", "tests/test_#1.py"), "Launch() should not fail")

	assert.Equal(t, "/w/foo_test.py", app.content(t, "/w/tests/test_foo.py"))
	assert.Equal(t, "/w/bar_test.py", app.content(t, "/w/tests/test_bar.py"))
	assert.Equal(t, "/w/baz.py", app.content(t, "/w/baz.py"), "Unmatched paths should stay")
}

// TestLaunch_Success_Swap tests a cycle of moves being executed losslessly.
func TestLaunch_Success_Swap(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{}, "/w/x_1", "/w/1_x")

	require.NoError(t, app.Launch(t.Context(), "*_*", "#2_#1"), "Launch() should not fail")

	assert.Equal(t, "/w/x_1", app.content(t, "/w/1_x"))
	assert.Equal(t, "/w/1_x", app.content(t, "/w/x_1"))

	entries, err := afero.ReadDir(app.fs, "/w")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "No temporary path should be left behind")
}

// TestLaunch_Success_DryRun tests that a dry run only renders the plan.
func TestLaunch_Success_DryRun(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{DryRun: true}, "/w/a.txt", "/w/b.txt")

	require.NoError(t, app.Launch(t.Context(), "?.txt", "#1.md"), "Launch() should not fail")

	assert.Equal(t, "a.txt --> a.md\nb.txt --> b.md\n", app.out.String())
	assert.Equal(t, "/w/a.txt", app.content(t, "/w/a.txt"), "Nothing should be moved")
}

// TestLaunch_Success_Exclude tests that excluded matches are not moved.
func TestLaunch_Success_Exclude(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{Exclude: []string{"keep*"}}, "/w/keep.log", "/w/drop.log")

	require.NoError(t, app.Launch(t.Context(), "*.log", "#1.old"), "Launch() should not fail")

	assert.Equal(t, "/w/keep.log", app.content(t, "/w/keep.log"))
	assert.Equal(t, "/w/drop.log", app.content(t, "/w/drop.old"))
}

// TestLaunch_Success_NoMatches tests that an empty batch is no failure.
func TestLaunch_Success_NoMatches(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{}, "/w/a")

	require.NoError(t, app.Launch(t.Context(), "*.none", "#1"), "Launch() should not fail")
}

// TestLaunch_Success_Confirm tests that only approved actions are carried out.
func TestLaunch_Success_Confirm(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{}, "/w/a.txt", "/w/b.txt")

	confirmer := &mockConfirmer{}
	confirmer.On("Confirm", mock.Anything, mock.Anything).Return([]plan.Action{
		{Source: "/w/b.txt", Destination: "/w/b.md"},
	}, nil)
	app.confirmer = confirmer

	require.NoError(t, app.Launch(t.Context(), "?.txt", "#1.md"), "Launch() should not fail")

	assert.Equal(t, "/w/a.txt", app.content(t, "/w/a.txt"), "Declined actions should not run")
	assert.Equal(t, "/w/b.txt", app.content(t, "/w/b.md"))

	confirmer.AssertExpectations(t)
}

// TestLaunch_Fail tests the errors and exit codes of failing batches.
func TestLaunch_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		dst      string
		exclude  []string
		exitCode int
	}{
		{"Fail_SharedDestination", "?.txt", "same.txt", nil, exitValidation},
		{"Fail_TokenIndex", "?.txt", "#2.txt", nil, exitPattern},
		{"Fail_PatternSyntax", "", "x", nil, exitPattern},
		{"Fail_Exclude", "?.txt", "#1.md", []string{"[a"}, exitPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, AppOptions{Exclude: tt.exclude}, "/w/a.txt", "/w/b.txt")

			err := app.Launch(t.Context(), tt.src, tt.dst)
			require.Error(t, err, "Launch() should fail")
			assert.Equal(t, tt.exitCode, exitCode(err))

			assert.Equal(t, "/w/a.txt", app.content(t, "/w/a.txt"), "Nothing should be moved")
			assert.Equal(t, "/w/b.txt", app.content(t, "/w/b.txt"), "Nothing should be moved")
		})
	}
}

// TestLaunch_Fail_Execution tests that execution failures reach the caller.
func TestLaunch_Fail_Execution(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{}, "/w/a.txt")

	execErr := &io.MoveExecutionError{
		Index: 0,
		Step:  plan.Action{Source: "/w/a.txt", Destination: "/w/a.md"},
		Err:   io.ErrPermissionDenied,
	}

	executor := &mockExecutor{}
	executor.On("Execute", mock.Anything, []plan.Action{execErr.Step}).Return(io.Summary{}, execErr)
	app.ioHandler = executor

	err := app.Launch(t.Context(), "?.txt", "#1.md")
	require.ErrorIs(t, err, io.ErrMoveExecution)
	require.ErrorIs(t, err, io.ErrPermissionDenied)
	assert.Equal(t, exitExecution, exitCode(err))

	executor.AssertExpectations(t)
}

// TestLaunch_Fail_Cancelled tests that a cancelled run stops before moving.
func TestLaunch_Fail_Cancelled(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, AppOptions{}, "/w/a.txt")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := app.Launch(ctx, "?.txt", "#1.md")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, exitExecution, exitCode(err))
	assert.Equal(t, "/w/a.txt", app.content(t, "/w/a.txt"))
}

// TestReportError tests that every conflict of a batch is reported.
func TestReportError(t *testing.T) {
	t.Parallel()

	conflictErr := &plan.ConflictError{Conflicts: []plan.Conflict{
		{Kind: plan.ConflictSharedDestination, Actions: []plan.Action{{Source: "/a", Destination: "/c"}, {Source: "/b", Destination: "/c"}}},
		{Kind: plan.ConflictSharedSource, Actions: []plan.Action{{Source: "/d", Destination: "/e"}, {Source: "/d", Destination: "/f"}}},
	}}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reportError(logger, conflictErr)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"), "Every conflict and a summary should be logged")
	assert.Contains(t, buf.String(), "/a --> /c")

	buf.Reset()
	reportError(logger, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}
