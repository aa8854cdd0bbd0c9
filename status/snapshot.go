// SPDX-License-Identifier: MIT

package status

import (
	"time"

	"github.com/google/uuid"
)

// Phase names the event a Snapshot reports.
type Phase string

// Emission points.
const (
	PhaseReady      Phase = "ready"
	PhaseShutdown   Phase = "shutdown"
	PhaseStart      Phase = "start"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
	PhaseEvicted    Phase = "evicted"
	PhaseWorkerDied Phase = "worker-died"
)

// Snapshot is one point-in-time view of executor state.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Operation string    `json:"operation"`
	Phase     Phase     `json:"phase"`
	Backend   string    `json:"backend"`
	Total     int       `json:"total"`   // executors that exist (or task units in flight for ephemeral)
	Active    int       `json:"active"`  // executors currently working
	Dropped   uint64    `json:"dropped"` // snapshots dropped before this one
	Time      time.Time `json:"time"`
}

// New stamps a snapshot with a fresh ID and the current time.
func New(operation string, phase Phase, backend string, total, active int) Snapshot {
	return Snapshot{
		ID:        uuid.New(),
		Operation: operation,
		Phase:     phase,
		Backend:   backend,
		Total:     total,
		Active:    active,
		Time:      time.Now(),
	}
}

// Publisher accepts snapshots without blocking. It reports whether at least
// one subscriber received the snapshot.
type Publisher interface {
	Publish(Snapshot) bool
}

// Nop is a Publisher that drops everything.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(Snapshot) bool { return false }
