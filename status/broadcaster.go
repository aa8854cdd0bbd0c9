// SPDX-License-Identifier: MIT

package status

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is used by Subscribe when buffer <= 0.
const DefaultBuffer = 64

// Broadcaster fans snapshots out to subscribers without ever blocking the
// publisher.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Snapshot
	nextID  uint64
	closed  bool
	dropped atomic.Uint64
}

var _ Publisher = (*Broadcaster)(nil)

// NewBroadcaster returns an open Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan Snapshot)}
}

// Publish offers s to every subscriber. A subscriber whose buffer is full
// misses it; with no subscribers the snapshot is dropped. Each miss bumps
// the drop counter. Returns true if anyone received it.
func (b *Broadcaster) Publish(s Snapshot) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	s.Dropped = b.dropped.Load()
	if len(b.subs) == 0 {
		b.dropped.Add(1)
		return false
	}

	delivered := false
	for _, ch := range b.subs {
		select {
		case ch <- s:
			delivered = true
		default:
			b.dropped.Add(1) // subscriber full
		}
	}

	return delivered
}

// Subscribe registers a new subscriber. cancel unregisters it and closes the
// channel; calling cancel more than once is safe.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Snapshot, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}

	return ch, cancel
}

// Dropped returns how many deliveries have been missed so far.
func (b *Broadcaster) Dropped() uint64 { return b.dropped.Load() }

// Subscribers returns the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Close closes every subscriber channel. Later Publish calls return false.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
