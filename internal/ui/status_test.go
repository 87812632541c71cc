package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/twm/internal/ipc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() *ipc.Status {
	return &ipc.Status{
		Backend:  "nested",
		Seat:     "nested",
		Output:   "nested",
		Mode:     "640x400@60.00Hz",
		PointerX: 12,
		PointerY: 34,
		Grab:     "none",
		Frames:   7,
		Uptime:   "3s",
		Bindings: []string{"quit=alt+shift+q"},
		Windows: []ipc.WindowStatus{
			{ID: 2, Title: "foot", Width: 300, Height: 200, X: 10, Y: 20, Focused: true, Activated: true},
			{ID: 1, Title: "scratch", Width: 400, Height: 240, Fullscreen: true},
		},
	}
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(sampleStatus(), 80)

	for _, want := range []string{
		"nested backend, up 3s",
		"640x400@60.00Hz",
		"12,34",
		"Windows (2)",
		"foot",
		"300x200+10+20",
		"activated",
		"fullscreen",
		IconFocus,
		"quit=alt+shift+q",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderStatusWithoutWindows(t *testing.T) {
	status := sampleStatus()
	status.Windows = nil
	status.Bindings = nil

	out := RenderStatus(status, 0)
	assert.Contains(t, out, "no windows mapped")
	assert.NotContains(t, out, "Bindings")
}

func TestWatchModel(t *testing.T) {
	calls := 0
	fetch := func() (*ipc.Status, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("twm is not running")
		}
		return sampleStatus(), nil
	}
	m := NewWatchModel(fetch, time.Millisecond)
	assert.Contains(t, m.View(), "Connecting")

	// The refresh command fetches synchronously when run.
	msg := m.refresh()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "a new tick is scheduled")
	status, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, "nested", status.Backend)
	assert.Contains(t, m.View(), "foot")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	m.Update(cmd())
	_, err = m.Status()
	assert.Error(t, err)
	assert.Contains(t, m.View(), "not running")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchModelWindowSize(t *testing.T) {
	m := NewWatchModel(func() (*ipc.Status, error) { return sampleStatus(), nil }, 0)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, time.Second, m.interval)
}
