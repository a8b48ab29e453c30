package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg struct {
	gen int
}

// cmdSource drives the engine with tea.Tick commands. Every Start or Stop bumps the
// generation, so ticks scheduled before it are recognised as stale and dropped.
type cmdSource struct {
	interval time.Duration
	gen      int
	running  bool
	armed    bool
}

func newCmdSource(interval time.Duration) *cmdSource {
	return &cmdSource{interval: interval}
}

// Start implements timer.TickSource.
func (s *cmdSource) Start() {
	if s.running {
		return
	}
	s.running = true
	s.armed = true
	s.gen++
}

// Stop implements timer.TickSource.
func (s *cmdSource) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.armed = false
	s.gen++
}

// take returns the first tick command after Start, or nil.
func (s *cmdSource) take() tea.Cmd {
	if !s.armed {
		return nil
	}
	s.armed = false
	return s.next()
}

// current reports whether msg belongs to the live tick chain.
func (s *cmdSource) current(msg tickMsg) bool {
	return s.running && msg.gen == s.gen
}

func (s *cmdSource) next() tea.Cmd {
	if !s.running {
		return nil
	}
	gen := s.gen
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
