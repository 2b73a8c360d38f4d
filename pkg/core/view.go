package core

import "time"

// Orientation selects the layout axis.
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// DisplayMode selects layout density.
type DisplayMode uint8

const (
	// Minimal emits markers and labels only.
	Minimal DisplayMode = iota
	// Maximal additionally places detail cards beside the axis.
	Maximal
)

func (m DisplayMode) String() string {
	if m == Maximal {
		return "maximal"
	}
	return "minimal"
}

// BubbleData is one aggregated time bucket. Ephemeral: recomputed on
// every aggregation call, never persisted.
type BubbleData struct {
	Start            time.Time        `json:"start"`
	End              time.Time        `json:"end"` // half-open: [Start, End)
	EventCount       int              `json:"eventCount"`
	DominantCategory EventType        `json:"dominantCategory"`
	PersonCounts     map[PersonID]int `json:"personCounts,omitempty"`
	ParticipantIDs   []PersonID       `json:"participantIds,omitempty"`
	Label            string           `json:"label"`
	SizeMultiplier   float64          `json:"sizeMultiplier"`
}

// NodeKind discriminates the LayoutNode variants.
type NodeKind uint8

const (
	NodeEvent NodeKind = iota
	NodeCluster
)

// LayoutNode is one positioned marker on the single-axis layout. It is a
// closed two-variant union: an event marker, or a synthetic cluster
// standing in for several events that would overlap at the current
// zoom and density.
type LayoutNode struct {
	Kind NodeKind `json:"kind"`

	// Event variant.
	EventID string    `json:"eventId,omitempty"`
	Type    EventType `json:"type,omitempty"`

	// Cluster variant.
	ClusterID      string    `json:"clusterId,omitempty"`
	Count          int       `json:"count,omitempty"`
	DominantType   EventType `json:"dominantType,omitempty"`
	MemberEventIDs []string  `json:"memberEventIds,omitempty"`

	// Label is the marker/card text: the truncated event title, or a
	// member count for clusters.
	Label string `json:"label,omitempty"`

	// Offset is the 1-D position along the layout axis, before the
	// caller applies orientation.
	Offset float64 `json:"offset"`

	// 2-D outputs for the renderer.
	MarkerCenter Position2D     `json:"markerCenter"`
	MarkerRadius float64        `json:"markerRadius"`
	CardRect     *Rect          `json:"cardRect,omitempty"`
	Connector    *[2]Position2D `json:"connector,omitempty"`
}

// RiverFlowNode is one stop on a participant's flow path.
type RiverFlowNode struct {
	EventID        string     `json:"eventId"`
	Position       Position2D `json:"position"`
	IsJunction     bool       `json:"isJunction"`
	ParticipantIDs []PersonID `json:"participantIds"`

	// Junction decoration: colors of every converging participant and
	// the drawn thickness, capped. Empty/zero on non-junction nodes.
	ConvergingColors []Color `json:"convergingColors,omitempty"`
	Thickness        float64 `json:"thickness,omitempty"`
}

// RiverFlowPath is one participant's continuous path through their
// events, ordered by time.
type RiverFlowPath struct {
	PersonID PersonID        `json:"personId"`
	Color    Color           `json:"color"`
	Lane     int             `json:"lane"`
	Nodes    []RiverFlowNode `json:"nodes"`
	Path     []CurveSegment  `json:"path"`
}
