package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/gomv/internal/plan"
)

//nolint:gochecknoglobals
var (
	arrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	tempStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))
)

const (
	arrow    = "-->"
	tempMark = "(temp)"
)

// PlanRenderer writes plans as aligned "source --> destination" lines. Paths
// below the working directory are shown relative to it. As an [io.Reporter]
// it writes every finished step and every failure of an executing plan.
type PlanRenderer struct {
	sync.Mutex

	out     io.Writer
	workDir string
	styled  bool
	width   int
}

// NewPlanRenderer returns a pointer to a new [PlanRenderer]. When styled is
// set, the output is colored for a terminal.
func NewPlanRenderer(out io.Writer, workDir string, styled bool) *PlanRenderer {
	return &PlanRenderer{
		out:     out,
		workDir: workDir,
		styled:  styled,
	}
}

// Align sets the column width of the sources to the widest source of the
// steps, so that the arrows of all lines line up.
func (r *PlanRenderer) Align(steps []plan.Action) {
	r.Lock()
	defer r.Unlock()

	r.width = 0
	for _, step := range steps {
		r.width = max(r.width, lipgloss.Width(r.display(step.Source)))
	}
}

// Render writes all steps, aligned to each other.
func (r *PlanRenderer) Render(steps []plan.Action) error {
	r.Align(steps)

	r.Lock()
	defer r.Unlock()

	for _, step := range steps {
		if _, err := fmt.Fprintln(r.out, r.line(step)); err != nil {
			return fmt.Errorf("(ui-render) %w", err)
		}
	}

	return nil
}

// Line returns the rendered line of a single step.
func (r *PlanRenderer) Line(step plan.Action) string {
	r.Lock()
	defer r.Unlock()

	return r.line(step)
}

func (r *PlanRenderer) line(step plan.Action) string {
	src := r.display(step.Source)

	var sb strings.Builder

	sb.WriteString(src)
	sb.WriteString(strings.Repeat(" ", max(0, r.width-lipgloss.Width(src))))
	sb.WriteString(" ")
	sb.WriteString(r.style(arrowStyle, arrow))
	sb.WriteString(" ")
	sb.WriteString(r.display(step.Destination))

	if step.Temporary {
		sb.WriteString(" ")
		sb.WriteString(r.style(tempStyle, tempMark))
	}

	return sb.String()
}

func (r *PlanRenderer) display(path string) string {
	if r.workDir == "" {
		return path
	}

	rel, err := filepath.Rel(r.workDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}

	return rel
}

func (r *PlanRenderer) style(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}

	return style.Render(s)
}

// StepStarted implements [io.Reporter].
func (r *PlanRenderer) StepStarted(int, plan.Action) {}

// StepFinished implements [io.Reporter].
func (r *PlanRenderer) StepFinished(_ int, step plan.Action) {
	r.Lock()
	defer r.Unlock()

	fmt.Fprintln(r.out, r.line(step)) //nolint:errcheck
}

// StepFailed implements [io.Reporter].
func (r *PlanRenderer) StepFailed(index int, step plan.Action, err error) {
	r.Lock()
	defer r.Unlock()

	fmt.Fprintf(r.out, "%s: step %d failed: %s: %v\n", r.style(errorStyle, "error"), index, r.line(step), err) //nolint:errcheck
}
