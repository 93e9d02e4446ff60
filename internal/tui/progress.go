package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nf-core/modcache/internal/git"
)

const barWidth = 30

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	phaseStyle = lipgloss.NewStyle().Faint(true)
)

// ProgressMsg reports the phase of a running remote operation.
// Total is zero when the remote does not announce one.
type ProgressMsg struct {
	Phase   string
	Current int
	Total   int
}

type finishedMsg struct{}

// ProgressModel renders one clone or fetch as a title and a progress bar.
type ProgressModel struct {
	operation string
	fullName  string
	phase     string
	current   int
	total     int
	finished  bool
}

// NewProgressModel creates a model for an operation such as "Cloning" on fullName.
func NewProgressModel(operation, fullName string) ProgressModel {
	return ProgressModel{operation: operation, fullName: fullName}
}

// Init implements tea.Model.
func (ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.phase = msg.Phase
		m.current = msg.Current
		m.total = msg.Total
	case finishedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("%s from %s", m.operation, m.fullName))
	if m.finished || m.phase == "" {
		return title + "\n"
	}

	filled := 0
	if m.total > 0 {
		filled = min(barWidth, m.current*barWidth/m.total)
	}
	bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)

	status := fmt.Sprintf("%s %d", m.phase, m.current)
	if m.total > 0 {
		status = fmt.Sprintf("%s %d/%d", m.phase, m.current, m.total)
	}
	return fmt.Sprintf("%s %s %s\n", title, bar, phaseStyle.Render(status))
}

// Tracker draws a progress bar per remote operation. It satisfies the
// registry package's ProgressReporter.
type Tracker struct {
	out io.Writer
}

// NewTracker creates a tracker that renders to out, usually stderr.
func NewTracker(out io.Writer) *Tracker {
	return &Tracker{out: out}
}

// Track starts rendering an operation. The returned update function may be
// called from any goroutine; done blocks until the final frame is drawn.
func (t *Tracker) Track(operation, fullName, _ string) (git.ProgressFunc, func()) {
	program := tea.NewProgram(
		NewProgressModel(operation, fullName),
		tea.WithOutput(t.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		if _, err := program.Run(); err != nil {
			slog.Debug("Progress display stopped", "operation", operation, "registry", fullName, "error", err)
		}
	}()

	update := func(phase string, current, total int) {
		program.Send(ProgressMsg{Phase: phase, Current: current, Total: total})
	}
	done := func() {
		program.Send(finishedMsg{})
		<-exited
	}
	return update, done
}
