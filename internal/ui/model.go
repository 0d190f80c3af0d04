package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/gomv/internal/queue"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

const (
	maxLogLines    = 100
	updateInterval = 100 * time.Millisecond
)

// ProgressMsg is a [tea.Msg] containing [queue.Progress] information of the
// executing plan.
type ProgressMsg struct {
	t    time.Time
	data queue.Progress
}

// TeaModel is the principal [tea.Model] for the progress user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler       *Handler
	progressHandler progressProvider

	innerWidth int

	data         queue.Progress
	progressBar  progress.Model
	logsViewport viewport.Model
	logs         []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, progressHandler progressProvider, cancel context.CancelFunc) TeaModel {
	return TeaModel{
		uiHandler:       uiHandler,
		progressHandler: progressHandler,
		progressBar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		),
		logsViewport: viewport.New(80, 20),
		logs:         make([]string, 0, maxLogLines),
		cancel:       cancel,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		updateProgress(m.progressHandler),
	)
}

// updateProgress produces a [tea.Cmd] which, after a short interval,
// returns a [ProgressMsg] with the current progress.
func updateProgress(p progressProvider) tea.Cmd {
	return tea.Tick(updateInterval, func(t time.Time) tea.Msg {
		return ProgressMsg{
			t:    t,
			data: p.Progress(),
		}
	})
}

// Update is the principal message handling method of the model.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.innerWidth = m.width - 2

		m.progressBar.Width = m.innerWidth

		// Progress panel, log title and borders take the rest.
		m.logsViewport.Width = m.innerWidth
		m.logsViewport.Height = max(1, m.height-13)
		m.refreshLogs()

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case ProgressMsg:
		m.data = msg.data

		cmds = append(cmds,
			m.progressBar.SetPercent(m.data.ProgressPct/100),
			updateProgress(m.progressHandler),
		)

	case LogMsg:
		if len(m.logs) >= maxLogLines {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))
		m.refreshLogs()

	case progress.FrameMsg:
		updated, cmd := m.progressBar.Update(msg)
		if progressModel, ok := updated.(progress.Model); ok {
			m.progressBar = progressModel
		}
		cmds = append(cmds, cmd)
	}

	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TeaModel) refreshLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	progressSection := borderStyle.
		Width(m.innerWidth).
		Render(m.formatProgressView("Moves", m.progressBar.View(), m.data))

	logsSection := borderStyle.
		Width(m.innerWidth).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.innerWidth).Render("Process Information"),
				lipgloss.NewStyle().Width(m.innerWidth).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.innerWidth).
		Render("q: quit gui • ctrl+c: stop before the next move")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		progressSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) formatProgressView(title string, progressBar string, data queue.Progress) string {
	var details string

	if !data.HasFinished {
		details = fmt.Sprintf(
			"Progress: %.2f%% (%d/%d)\n"+
				"Moves: InProgress=%d, Done=%d, Failed=%d\n"+
				"Time: Started=%v, ETA=%v (%s)\n"+
				"Speed: %.1f %s\n",
			data.ProgressPct,
			data.ProcessedItems,
			data.TotalItems,
			data.InProgressItems,
			data.SuccessItems,
			data.FailedItems,
			data.StartTime.Format("15:04:05"),
			data.ETA.Format("15:04:05"),
			humanize.RelTime(time.Now(), time.Now().Add(data.TimeLeft), "ago", "left"),
			data.TransferSpeed,
			data.TransferSpeedUnit,
		)
	} else {
		details = fmt.Sprintf(
			"Progress: %.2f%% (%d/%d)\n"+
				"Moves: Done=%d, Failed=%d\n"+
				"Time: Started=%v, Finished=%v (%s)\n\n",
			data.ProgressPct,
			data.ProcessedItems,
			data.TotalItems,
			data.SuccessItems,
			data.FailedItems,
			data.StartTime.Format("15:04:05"),
			data.FinishTime.Format("15:04:05"),
			humanize.RelTime(data.StartTime, data.FinishTime, "", ""),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.innerWidth).Render(title),
		"",
		progressBar,
		"",
		infoStyle.Width(m.innerWidth).Render(details),
	)
}
