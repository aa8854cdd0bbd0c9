// SPDX-License-Identifier: MIT

package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BarWidth is the number of cells in an activity bar.
const BarWidth = 20

const timeLayout = "15:04:05"

var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	barStyle   = lipgloss.NewStyle().Foreground(colorSuccess)

	phaseStyles = map[Phase]lipgloss.Style{
		PhaseReady:      lipgloss.NewStyle().Foreground(colorSuccess),
		PhaseStart:      lipgloss.NewStyle().Foreground(colorPrimary),
		PhaseComplete:   lipgloss.NewStyle().Foreground(colorSuccess),
		PhaseFailed:     lipgloss.NewStyle().Foreground(colorError).Bold(true),
		PhaseWorkerDied: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		PhaseEvicted:    lipgloss.NewStyle().Foreground(colorWarning),
		PhaseShutdown:   lipgloss.NewStyle().Foreground(colorMuted),
	}
)

// Bar draws active/total as a fixed-width gauge.
func Bar(active, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = active * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Line renders one snapshot:
//
//	15:04:05 pool       start      add           3/4 [███████████████░░░░░] dropped=0
//
// With styled=false no escape sequences are emitted.
func Line(s Snapshot, styled bool) string {
	phase := fmt.Sprintf("%-11s", s.Phase)
	bar := Bar(s.Active, s.Total, BarWidth)
	stamp := s.Time.Format(timeLayout)
	if styled {
		if st, ok := phaseStyles[s.Phase]; ok {
			phase = st.Render(phase)
		}
		bar = barStyle.Render(bar)
		stamp = mutedStyle.Render(stamp)
	}

	return fmt.Sprintf("%s %-10s %s %-13s %3d/%-3d [%s] dropped=%d",
		stamp, s.Backend, phase, s.Operation, s.Active, s.Total, bar, s.Dropped)
}
