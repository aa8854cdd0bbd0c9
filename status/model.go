// SPDX-License-Identifier: MIT

package status

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RecentEvents is how many snapshots the TUI keeps in its event log.
const RecentEvents = 10

type snapshotMsg Snapshot

type streamClosedMsg struct{}

// Model is a bubbletea program rendering a live snapshot stream: one gauge
// per backend plus the most recent events.
type Model struct {
	ch       <-chan Snapshot
	backends map[string]Snapshot
	events   []Snapshot
	width    int
	closed   bool
}

var _ tea.Model = Model{}

// NewModel reads from ch, typically a Broadcaster subscription.
func NewModel(ch <-chan Snapshot) Model {
	return Model{ch: ch, backends: make(map[string]Snapshot)}
}

func waitForSnapshot(ch <-chan Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

// Init starts listening on the stream.
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.ch)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case snapshotMsg:
		s := Snapshot(msg)
		backends := make(map[string]Snapshot, len(m.backends)+1)
		for k, v := range m.backends {
			backends[k] = v
		}
		backends[s.Backend] = s
		m.backends = backends

		events := append(append([]Snapshot(nil), m.events...), s)
		if len(events) > RecentEvents {
			events = events[len(events)-RecentEvents:]
		}
		m.events = events

		return m, waitForSnapshot(m.ch)
	case streamClosedMsg:
		m.closed = true
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("parmatrix status"))
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.backends))
	for n := range m.backends {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) == 0 {
		b.WriteString(mutedStyle.Render("waiting for snapshots..."))
		b.WriteString("\n")
	}
	var dropped uint64
	for _, n := range names {
		s := m.backends[n]
		fmt.Fprintf(&b, "%-10s %3d/%-3d %s\n", n, s.Active, s.Total, barStyle.Render(Bar(s.Active, s.Total, BarWidth)))
		if s.Dropped > dropped {
			dropped = s.Dropped
		}
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		for i := len(m.events) - 1; i >= 0; i-- {
			line := Line(m.events[i], true)
			if m.width > 0 {
				line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	footer := fmt.Sprintf("q quit  dropped=%d", dropped)
	if m.closed {
		footer += "  (stream closed)"
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(footer))

	return b.String()
}

// Closed reports whether the stream has ended.
func (m Model) Closed() bool { return m.closed }

// Latest returns the last snapshot seen for backend.
func (m Model) Latest(backend string) (Snapshot, bool) {
	s, ok := m.backends[backend]
	return s, ok
}

// Events returns the retained recent snapshots, oldest first.
func (m Model) Events() []Snapshot {
	return append([]Snapshot(nil), m.events...)
}
