package core

import "errors"

// Engine error taxonomy. Callers match with errors.Is; engines wrap
// these with context via fmt.Errorf and %w.
var (
	// ErrInvalidConfiguration marks a whole-input contract violation,
	// such as a non-positive pixels-per-day scale.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidPartition marks a split whose asset groups do not tile
	// the source event's assets exactly.
	ErrInvalidPartition = errors.New("invalid asset partition")

	// ErrInsufficientInput marks operations called with too little
	// input, such as a merge of fewer than two events.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrUnresolvableTimestamp marks an event with neither a precise
	// nor a fuzzy date. Aggregation and layout skip such events and
	// report a count instead of failing.
	ErrUnresolvableTimestamp = errors.New("unresolvable timestamp")
)
