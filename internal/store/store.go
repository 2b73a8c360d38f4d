// Package store defines the event store interface the engines read
// from and the mutation service writes to. Implementations must apply
// mutations atomically: either the whole change set commits or none of
// it does.
package store

import (
	"errors"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// ErrNotFound is returned when an event ID does not exist.
var ErrNotFound = errors.New("event not found")

// Mutation is an atomic change set produced by merge/split/key-asset
// operations: remove the listed events, add the replacements.
type Mutation struct {
	Remove []string
	Add    []core.TimelineEvent
}

// Backend is the interface all event store implementations satisfy.
// Version increments on every successful write, feeding the scene
// memo's cache key.
type Backend interface {
	// Lifecycle.
	Init() error
	Close() error

	// Version returns the current events version. It changes iff the
	// stored collection changed.
	Version() uint64

	// Reads.
	ListEvents() ([]core.TimelineEvent, error)
	GetEvent(id string) (core.TimelineEvent, error)
	CountEvents() (int, error)

	// Writes.
	PutEvent(e core.TimelineEvent) error
	DeleteEvent(id string) error

	// ApplyMutation applies the change set atomically. Every ID in
	// Remove must exist and no event in Add may collide with a
	// surviving ID, otherwise nothing is changed.
	ApplyMutation(m Mutation) error
}
