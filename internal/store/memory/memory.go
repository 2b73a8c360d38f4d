// Package memory implements the event store in process memory. It is
// the default backend: the engines only ever need a snapshot slice,
// and a session's events fit comfortably in RAM.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lifeweave/lifeweave/internal/store"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Backend stores events in a map guarded by a RWMutex.
type Backend struct {
	mu      sync.RWMutex
	events  map[string]core.TimelineEvent
	version uint64
}

// New creates an empty in-memory event store.
func New() *Backend {
	return &Backend{events: make(map[string]core.TimelineEvent)}
}

// Init implements store.Backend; nothing to do for memory.
func (b *Backend) Init() error { return nil }

// Close implements store.Backend; nothing to do for memory.
func (b *Backend) Close() error { return nil }

// Version returns the current events version.
func (b *Backend) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// ListEvents returns a snapshot of all events, ordered by resolved
// time (undated events last), ties broken by ID for determinism.
func (b *Backend) ListEvents() ([]core.TimelineEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.TimelineEvent, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		ti, iok := out[i].When()
		tj, jok := out[j].When()
		if iok != jok {
			return iok
		}
		if iok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetEvent returns the event with the given ID.
func (b *Backend) GetEvent(id string) (core.TimelineEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.events[id]
	if !ok {
		return core.TimelineEvent{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return e.Clone(), nil
}

// CountEvents returns the number of stored events.
func (b *Backend) CountEvents() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events), nil
}

// PutEvent inserts or replaces an event and bumps the version.
func (b *Backend) PutEvent(e core.TimelineEvent) error {
	if e.ID == "" {
		return fmt.Errorf("%w: event has no ID", core.ErrInsufficientInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[e.ID] = e.Clone()
	b.version++
	return nil
}

// DeleteEvent removes an event and bumps the version.
func (b *Backend) DeleteEvent(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(b.events, id)
	b.version++
	return nil
}

// ApplyMutation applies the change set atomically: all validation runs
// before the first write, so a failed mutation leaves the store
// untouched.
func (b *Backend) ApplyMutation(m Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range m.Remove {
		if _, ok := b.events[id]; !ok {
			return fmt.Errorf("%w: cannot remove %s", store.ErrNotFound, id)
		}
	}
	removed := make(map[string]bool, len(m.Remove))
	for _, id := range m.Remove {
		removed[id] = true
	}
	for _, e := range m.Add {
		if e.ID == "" {
			return fmt.Errorf("%w: added event has no ID", core.ErrInsufficientInput)
		}
		if _, exists := b.events[e.ID]; exists && !removed[e.ID] {
			return fmt.Errorf("added event %s collides with an existing event", e.ID)
		}
	}

	for _, id := range m.Remove {
		delete(b.events, id)
	}
	for _, e := range m.Add {
		b.events[e.ID] = e.Clone()
	}
	b.version++
	return nil
}

// Mutation aliases store.Mutation so callers of this package don't
// need both imports.
type Mutation = store.Mutation
