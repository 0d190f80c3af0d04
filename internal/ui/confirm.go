package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/gomv/internal/plan"
	"github.com/mattn/go-isatty"
)

// ErrNotATerminal is an error that occurs when confirmations are requested,
// but there is no terminal to ask them on.
var ErrNotATerminal = errors.New("interactive confirmation requires a terminal")

// Answer is the answer of a user to a single confirmation prompt.
type Answer int

const (
	// AnswerNo declines the current action.
	AnswerNo Answer = iota

	// AnswerYes approves the current action.
	AnswerYes

	// AnswerAll approves the current and all remaining actions.
	AnswerAll

	// AnswerQuit declines the current and all remaining actions.
	AnswerQuit
)

// confirmModel is the [tea.Model] of a single confirmation prompt.
type confirmModel struct {
	question string
	answer   Answer
	done     bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

//nolint:ireturn
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.answer = AnswerYes
	case "n", "N", "enter":
		m.answer = AnswerNo
	case "a", "A":
		m.answer = AnswerAll
	case "q", "Q", "esc", "ctrl+c":
		m.answer = AnswerQuit
	default:
		return m, nil
	}

	m.done = true

	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s? [y/N/a/q] ", m.question)
}

// Confirmer asks the user to approve every action of a plan.
type Confirmer struct {
	renderer *PlanRenderer
	ask      func(ctx context.Context, question string) (Answer, error)
}

// NewConfirmer returns a pointer to a new [Confirmer] prompting on the
// given terminal. It fails with [ErrNotATerminal] if in is no terminal.
func NewConfirmer(renderer *PlanRenderer, in *os.File, out io.Writer) (*Confirmer, error) {
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return nil, ErrNotATerminal
	}

	return &Confirmer{
		renderer: renderer,
		ask: func(ctx context.Context, question string) (Answer, error) {
			return askTerminal(ctx, in, out, question)
		},
	}, nil
}

// Confirm asks for every action and returns the approved ones, in their
// original order. Nothing is moved while asking.
func (c *Confirmer) Confirm(ctx context.Context, actions []plan.Action) ([]plan.Action, error) {
	approved := make([]plan.Action, 0, len(actions))

	c.renderer.Align(actions)

	for idx, action := range actions {
		answer, err := c.ask(ctx, "move "+c.renderer.Line(action))
		if err != nil {
			return nil, fmt.Errorf("(ui-confirm) %w", err)
		}

		switch answer {
		case AnswerYes:
			approved = append(approved, action)

		case AnswerAll:
			return append(approved, actions[idx:]...), nil

		case AnswerQuit:
			return approved, nil

		case AnswerNo:
		}
	}

	return approved, nil
}

func askTerminal(ctx context.Context, in io.Reader, out io.Writer, question string) (Answer, error) {
	program := tea.NewProgram(
		confirmModel{question: question},
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		return AnswerQuit, fmt.Errorf("(ui-ask) %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok || !m.done {
		return AnswerQuit, nil
	}

	fmt.Fprintln(out, question+"? "+answerText(m.answer)) //nolint:errcheck

	return m.answer, nil
}

func answerText(answer Answer) string {
	switch answer {
	case AnswerYes:
		return "yes"
	case AnswerAll:
		return "all"
	case AnswerQuit:
		return "quit"
	case AnswerNo:
	}

	return "no"
}
