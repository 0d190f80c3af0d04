package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/desertwitch/gomv/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRender_Success tests aligned, relative, unstyled plan output.
func TestRender_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewPlanRenderer(&buf, "/w", false)

	steps := []plan.Action{
		{Source: "/w/b", Destination: "/w/b.gomv0001", Temporary: true},
		{Source: "/w/long/a", Destination: "/w/b"},
		{Source: "/other/c", Destination: "/w/c"},
	}

	require.NoError(t, r.Render(steps), "Render() should not fail")

	want := "b        --> b.gomv0001 (temp)\n" +
		"long/a   --> b\n" +
		"/other/c --> c\n"

	assert.Equal(t, want, buf.String())
}

// TestRender_Success_Styled tests that styling keeps the text intact.
func TestRender_Success_Styled(t *testing.T) {
	t.Parallel()

	r := NewPlanRenderer(&bytes.Buffer{}, "", true)

	line := r.Line(plan.Action{Source: "/a", Destination: "/b", Temporary: true})

	assert.Contains(t, line, "/a")
	assert.Contains(t, line, arrow)
	assert.Contains(t, line, tempMark)
}

// TestReporter_Success tests the output written while a plan executes.
func TestReporter_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewPlanRenderer(&buf, "/w", false)

	steps := []plan.Action{
		{Source: "/w/aa", Destination: "/w/b"},
		{Source: "/w/c", Destination: "/w/d"},
	}
	r.Align(steps)

	r.StepStarted(0, steps[0])
	r.StepFinished(0, steps[0])
	r.StepStarted(1, steps[1])
	r.StepFailed(1, steps[1], errors.New("boom"))

	want := "aa --> b\n" +
		"error: step 1 failed: c  --> d: boom\n"

	assert.Equal(t, want, buf.String())
}
