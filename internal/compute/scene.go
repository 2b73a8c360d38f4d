package compute

import (
	"time"

	"github.com/lifeweave/lifeweave/internal/aggregate"
	"github.com/lifeweave/lifeweave/internal/flow"
	"github.com/lifeweave/lifeweave/internal/layout"
	"github.com/lifeweave/lifeweave/internal/memo"
	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Request is one view-state snapshot to turn into a scene. Revision
// increases monotonically with every view-state change; when several
// requests pile up, only the newest is computed.
type Request struct {
	Revision      uint64
	Events        []core.TimelineEvent
	EventsVersion uint64

	Tier         tier.Tier
	Orientation  core.Orientation
	Mode         core.DisplayMode
	Viewport     core.Size
	PixelsPerDay float64
	LaneSpacing  float64
	MinDate      time.Time
	Selected     []core.PersonID
}

// MemoKey derives the memoization key for this request.
func (r Request) MemoKey() memo.Key {
	return memo.Key{
		EventsVersion: r.EventsVersion,
		Tier:          r.Tier,
		Viewport:      r.Viewport,
		Orientation:   r.Orientation,
		Mode:          r.Mode,
	}
}

// BuildScene runs all three engines synchronously and bundles their
// output. The engines are pure, so identical requests always produce
// identical scenes (up to ComputedAt).
func BuildScene(req Request) (core.Scene, error) {
	agg := aggregate.Aggregate(req.Events, req.Tier)

	nodes, excludedLayout := layout.NodesFromEvents(req.Events)
	laid, err := layout.Layout(nodes, layout.Config{
		Tier:         req.Tier,
		Mode:         req.Mode,
		Orientation:  req.Orientation,
		Viewport:     req.Viewport,
		PixelsPerDay: req.PixelsPerDay,
		MinDate:      req.MinDate,
	})
	if err != nil {
		return core.Scene{}, err
	}

	flows, err := flow.BuildFlows(req.Events, req.Selected, flow.Config{
		Orientation:  req.Orientation,
		Viewport:     req.Viewport,
		PixelsPerDay: req.PixelsPerDay,
		LaneSpacing:  req.LaneSpacing,
		MinDate:      req.MinDate,
	})
	if err != nil {
		return core.Scene{}, err
	}

	return core.Scene{
		Revision:       req.Revision,
		Tier:           req.Tier.String(),
		Orientation:    req.Orientation,
		Mode:           req.Mode,
		Viewport:       req.Viewport,
		Bubbles:        agg.Bubbles,
		Nodes:          laid,
		Paths:          flows.Paths,
		ExcludedEvents: excludedLayout,
		ComputedAt:     time.Now().UTC(),
	}, nil
}
