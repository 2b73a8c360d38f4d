package core

import "time"

// Scene is one fully computed view: everything the rendering layer
// needs to draw the current state, bundled for memoization, export,
// and streaming. Revision is the event-store version the scene was
// computed from.
type Scene struct {
	Revision    uint64      `json:"revision"`
	Tier        string      `json:"tier"`
	Orientation Orientation `json:"orientation"`
	Mode        DisplayMode `json:"mode"`
	Viewport    Size        `json:"viewport"`

	Bubbles []BubbleData    `json:"bubbles,omitempty"`
	Nodes   []LayoutNode    `json:"nodes,omitempty"`
	Paths   []RiverFlowPath `json:"paths,omitempty"`

	// ExcludedEvents counts events skipped for lacking a resolvable
	// date, surfaced for diagnostics.
	ExcludedEvents int `json:"excludedEvents"`

	ComputedAt time.Time `json:"computedAt"`
}
