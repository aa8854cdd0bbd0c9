// SPDX-License-Identifier: MIT

package matrixio

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/parmatrix/matrix"
)

// MaxMatrices is the default Registry capacity.
const MaxMatrices = 50

// Registry is a bounded, name-keyed matrix store. Names keep insertion order.
type Registry struct {
	mu       sync.RWMutex
	items    map[string]*matrix.Dense
	order    []string
	capacity int
}

// NewRegistry returns an empty registry; capacity <= 0 means MaxMatrices.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = MaxMatrices
	}

	return &Registry{items: make(map[string]*matrix.Dense), capacity: capacity}
}

// Put adds a named matrix.
func (r *Registry) Put(m *matrix.Dense) error {
	if err := checkWritable(m); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, m.Name())
	}
	if len(r.items) >= r.capacity {
		return fmt.Errorf("%w (%d)", ErrRegistryFull, r.capacity)
	}
	r.items[m.Name()] = m
	r.order = append(r.order, m.Name())

	return nil
}

// Replace stores m, overwriting a matrix of the same name in place.
func (r *Registry) Replace(m *matrix.Dense) error {
	if err := checkWritable(m); err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.items[m.Name()]; ok {
		r.items[m.Name()] = m
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	return r.Put(m)
}

// Get returns the matrix stored under name.
func (r *Registry) Get(name string) (*matrix.Dense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return m, nil
}

// Delete removes name.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Names lists stored names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// All returns the stored matrices in insertion order.
func (r *Registry) All() []*matrix.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*matrix.Dense, len(r.order))
	for i, n := range r.order {
		out[i] = r.items[n]
	}

	return out
}

// Len returns the number of stored matrices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
