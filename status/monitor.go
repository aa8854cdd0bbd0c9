// SPDX-License-Identifier: MIT

package status

import (
	"context"
	"fmt"
	"io"
)

// Monitor prints snapshots as plain lines, one per snapshot.
type Monitor struct {
	w      io.Writer
	styled bool
}

// NewMonitor writes to w; styled enables lipgloss colouring.
func NewMonitor(w io.Writer, styled bool) *Monitor {
	return &Monitor{w: w, styled: styled}
}

// Run prints every snapshot from ch until ch closes (nil) or ctx ends
// (ctx.Err()). A write error stops the monitor.
func (m *Monitor) Run(ctx context.Context, ch <-chan Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintln(m.w, Line(s, m.styled)); err != nil {
				return err
			}
		}
	}
}
