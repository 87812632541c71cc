package ui

import (
	"strings"
	"time"

	"github.com/bnema/twm/internal/ipc"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusFunc fetches a fresh status snapshot.
type StatusFunc func() (*ipc.Status, error)

// WatchKeyMap are the keys of the watch view.
type WatchKeyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

// DefaultWatchKeys returns the default watch keys.
func DefaultWatchKeys() WatchKeyMap {
	return WatchKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type tickMsg time.Time

type statusMsg struct {
	status *ipc.Status
	err    error
}

// WatchModel polls the compositor and renders its status until quit.
type WatchModel struct {
	fetch    StatusFunc
	interval time.Duration
	keys     WatchKeyMap
	spinner  spinner.Model

	status *ipc.Status
	err    error
	width  int
}

// NewWatchModel creates a watch view refreshing every interval.
func NewWatchModel(fetch StatusFunc, interval time.Duration) *WatchModel {
	if interval <= 0 {
		interval = time.Second
	}
	s := spinner.New()
	s.Spinner = spinner.Spinner{Frames: SpinnerDot, FPS: time.Second / 10}
	s.Style = SpinnerStyle

	return &WatchModel{
		fetch:    fetch,
		interval: interval,
		keys:     DefaultWatchKeys(),
		spinner:  s,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

func (m *WatchModel) refresh() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		status, err := fetch()
		return statusMsg{status: status, err: err}
	}
}

func (m *WatchModel) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, m.refresh()
	case statusMsg:
		m.status, m.err = msg.status, msg.err
		return m, m.schedule()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *WatchModel) View() string {
	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(FormatStatus(false, ErrorStyle.Render(m.err.Error())))
		b.WriteString("\n")
	case m.status == nil:
		b.WriteString(m.spinner.View() + " " + SubtleStyle.Render("Connecting to twm..."))
		b.WriteString("\n")
	default:
		b.WriteString(RenderStatus(m.status, m.width))
	}
	b.WriteString(CreateSeparator(m.width, ""))
	b.WriteString("\n")
	b.WriteString(FormatControl(m.keys.Refresh.Help().Key, m.keys.Refresh.Help().Desc))
	b.WriteString("  ")
	b.WriteString(FormatControl(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))
	b.WriteString("\n")
	return b.String()
}

// Status returns the last fetched snapshot.
func (m *WatchModel) Status() (*ipc.Status, error) { return m.status, m.err }
