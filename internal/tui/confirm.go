package tui

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

// ConfirmModel is a yes/no question that defaults to no.
type ConfirmModel struct {
	prompt    string
	confirmed bool
	answered  bool
}

// NewConfirmModel creates a model asking prompt.
func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{prompt: prompt}
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Init implements tea.Model.
func (ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed = true
	case "n", "N", "enter", "esc", "ctrl+c":
		m.confirmed = false
	default:
		return m, nil
	}
	m.answered = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	question := promptStyle.Render(m.prompt) + " [y/N] "
	if !m.answered {
		return question
	}
	if m.confirmed {
		return question + "y\n"
	}
	return question + "n\n"
}

// Confirm asks prompt on out, reading the answer from in. Any failure to
// run the prompt counts as no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	final, err := tea.NewProgram(NewConfirmModel(prompt), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		slog.Warn("Failed to read confirmation", "error", err)
		return false
	}
	model, ok := final.(ConfirmModel)
	return ok && model.Confirmed()
}

// CacheDeletionConfirm returns a hook that asks before a broken cache is deleted.
func CacheDeletionConfirm(in io.Reader, out io.Writer) func(localDir string, cause error) bool {
	return func(localDir string, _ error) bool {
		return Confirm(in, out, fmt.Sprintf("Delete local cache '%s' and try again?", localDir))
	}
}
