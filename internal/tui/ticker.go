package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg struct {
	gen int
}

// teaTicker schedules one tea.Tick per second while running. Every Start and Stop bumps the
// generation so ticks scheduled for an earlier attempt are dropped.
type teaTicker struct {
	interval time.Duration
	gen      int
	running  bool
	armed    bool
}

func newTeaTicker() *teaTicker {
	return &teaTicker{interval: time.Second}
}

func (t *teaTicker) Start() {
	t.gen++
	t.running = true
	t.armed = true
}

func (t *teaTicker) Stop() {
	t.gen++
	t.running = false
	t.armed = false
}

// accept reports whether msg belongs to the running generation and re-arms the ticker.
func (t *teaTicker) accept(msg tickMsg) bool {
	if !t.running || msg.gen != t.gen {
		return false
	}
	t.armed = true
	return true
}

// cmd returns the next tick command, or nil when nothing needs scheduling.
func (t *teaTicker) cmd() tea.Cmd {
	if !t.armed {
		return nil
	}
	t.armed = false
	gen := t.gen
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
