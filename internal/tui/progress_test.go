package tui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestProgressModel_View(t *testing.T) {
	t.Parallel()

	m := NewProgressModel("Cloning", "nf-core/modules")
	assert.Contains(t, m.View(), "Cloning from nf-core/modules")
	assert.NotContains(t, m.View(), "░")

	updated, cmd := m.Update(ProgressMsg{Phase: "Receiving objects", Current: 15, Total: 30})
	assert.Nil(t, cmd)
	view := updated.View()
	assert.Contains(t, view, "Receiving objects 15/30")
	assert.Equal(t, barWidth/2, strings.Count(view, "░"))

	updated, _ = updated.Update(ProgressMsg{Phase: "Counting objects", Current: 42})
	view = updated.View()
	assert.Contains(t, view, "Counting objects 42")
	assert.NotContains(t, view, "42/")
	assert.Equal(t, barWidth, strings.Count(view, "░"))
}

func TestProgressModel_BarIsClamped(t *testing.T) {
	t.Parallel()

	m, _ := NewProgressModel("Pulling", "acme/modules").Update(ProgressMsg{Phase: "Resolving deltas", Current: 90, Total: 30})
	assert.Zero(t, strings.Count(m.View(), "░"))
}

func TestProgressModel_Quits(t *testing.T) {
	t.Parallel()

	m := NewProgressModel("Pulling", "acme/modules")

	_, cmd := m.Update(finishedMsg{})
	assert.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
}

func TestTracker_Track(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	tracker := NewTracker(&out)

	update, done := tracker.Track("Cloning", "acme/modules", "https://example.com/acme/modules")

	var wg sync.WaitGroup
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			update("Receiving objects", i, 3)
		}()
	}
	wg.Wait()
	done()

	assert.Contains(t, out.String(), "Cloning from acme/modules")
}
