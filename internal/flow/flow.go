// Package flow builds the multi-participant "river" view: one smooth
// path per person through their events, with junction points where
// several participants share an event and their lanes converge.
package flow

import (
	"fmt"
	"sort"
	"time"

	"github.com/lifeweave/lifeweave/internal/palette"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Config holds the view parameters for one flow pass.
type Config struct {
	Orientation  core.Orientation
	Viewport     core.Size
	PixelsPerDay float64
	MinDate      time.Time

	// LaneSpacing is the perpendicular distance between adjacent
	// lanes. Zero means the default.
	LaneSpacing float64
}

const (
	defaultLaneSpacing = 64.0

	baseThickness = 3.0
	// thicknessStep per extra converging participant, capped so a
	// crowded junction doesn't paint over its neighbors.
	thicknessStep = 1.5
	maxThickness  = 12.0
)

// Result carries the paths plus a diagnostic count of events skipped
// for lacking a resolvable date.
type Result struct {
	Paths         []core.RiverFlowPath
	ExcludedCount int
}

// junctionThickness grows with the number of converging participants
// and is capped at maxThickness.
func junctionThickness(participants int) float64 {
	t := baseThickness + thicknessStep*float64(participants-1)
	if t > maxThickness {
		return maxThickness
	}
	return t
}

// BuildFlows builds one path per selected person. An empty selection
// means every participant referenced by the events. Lane assignment
// follows the selection's own order, or first-appearance order when
// the selection is empty, so identities stay put across re-renders.
func BuildFlows(events []core.TimelineEvent, selected []core.PersonID, cfg Config) (Result, error) {
	if cfg.PixelsPerDay <= 0 {
		return Result{}, fmt.Errorf("%w: pixelsPerDay must be positive, got %v",
			core.ErrInvalidConfiguration, cfg.PixelsPerDay)
	}
	if cfg.LaneSpacing <= 0 {
		cfg.LaneSpacing = defaultLaneSpacing
	}

	var res Result

	dated := make([]datedEvent, 0, len(events))
	for i := range events {
		when, ok := events[i].When()
		if !ok {
			res.ExcludedCount++
			continue
		}
		dated = append(dated, datedEvent{event: &events[i], at: when})
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].at.Before(dated[j].at) })

	lanes := assignLanes(dated, selected)
	if len(lanes.order) == 0 {
		return res, nil
	}

	colors := make(map[core.PersonID]core.Color, len(lanes.order))
	for _, p := range lanes.order {
		colors[p] = palette.ColorForPerson(p, lanes.index[p])
	}

	paths := make(map[core.PersonID]*core.RiverFlowPath, len(lanes.order))
	for _, p := range lanes.order {
		paths[p] = &core.RiverFlowPath{
			PersonID: p,
			Color:    colors[p],
			Lane:     lanes.index[p],
		}
	}

	for _, d := range dated {
		involved := selectedParticipants(d.event, lanes.index)
		if len(involved) == 0 {
			continue
		}

		along := d.at.Sub(cfg.MinDate).Hours() / 24 * cfg.PixelsPerDay
		isJunction := len(involved) >= 2

		var junctionPos core.Position2D
		var convergingColors []core.Color
		if isJunction {
			// All converging paths share one position: the midpoint of
			// the involved lanes.
			mean := 0.0
			for _, p := range involved {
				mean += laneOffset(lanes.index[p], len(lanes.order), cfg)
			}
			mean /= float64(len(involved))
			junctionPos = position(along, mean, cfg)

			convergingColors = make([]core.Color, len(involved))
			for i, p := range involved {
				convergingColors[i] = colors[p]
			}
		}

		for _, p := range involved {
			n := core.RiverFlowNode{
				EventID:        d.event.ID,
				ParticipantIDs: append([]core.PersonID(nil), d.event.ParticipantIDs...),
			}
			if isJunction {
				n.Position = junctionPos
				n.IsJunction = true
				n.ConvergingColors = convergingColors
				n.Thickness = junctionThickness(len(involved))
			} else {
				n.Position = position(along, laneOffset(lanes.index[p], len(lanes.order), cfg), cfg)
			}
			paths[p].Nodes = append(paths[p].Nodes, n)
		}
	}

	for _, p := range lanes.order {
		path := paths[p]
		if len(path.Nodes) == 0 {
			continue
		}
		path.Path = smoothPath(path.Nodes)
		res.Paths = append(res.Paths, *path)
	}
	return res, nil
}

type datedEvent struct {
	event *core.TimelineEvent
	at    time.Time
}

type laneAssignment struct {
	order []core.PersonID
	index map[core.PersonID]int
}

// assignLanes maps each selected person to a lane index. With an
// explicit selection, lanes follow the selection order; otherwise
// first appearance in chronological event order decides.
func assignLanes(dated []datedEvent, selected []core.PersonID) laneAssignment {
	la := laneAssignment{index: make(map[core.PersonID]int)}

	if len(selected) > 0 {
		for _, p := range selected {
			if _, dup := la.index[p]; dup {
				continue
			}
			la.index[p] = len(la.order)
			la.order = append(la.order, p)
		}
		return la
	}

	for _, d := range dated {
		for _, p := range d.event.ParticipantIDs {
			if _, seen := la.index[p]; seen {
				continue
			}
			la.index[p] = len(la.order)
			la.order = append(la.order, p)
		}
	}
	return la
}

// selectedParticipants returns the event's participants that are part
// of the current selection, in lane order.
func selectedParticipants(e *core.TimelineEvent, index map[core.PersonID]int) []core.PersonID {
	var out []core.PersonID
	for _, p := range e.ParticipantIDs {
		if _, ok := index[p]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return index[out[i]] < index[out[j]] })
	return out
}

// laneOffset is the perpendicular coordinate of a lane: lanes spread
// symmetrically around the viewport centerline.
func laneOffset(lane, total int, cfg Config) float64 {
	center := cfg.Viewport.Width / 2
	if cfg.Orientation == core.Horizontal {
		center = cfg.Viewport.Height / 2
	}
	return center + (float64(lane)-float64(total-1)/2)*cfg.LaneSpacing
}

// position combines the along-axis and perpendicular coordinates per
// the orientation.
func position(along, perp float64, cfg Config) core.Position2D {
	if cfg.Orientation == core.Horizontal {
		return core.Position2D{X: along, Y: perp}
	}
	return core.Position2D{X: perp, Y: along}
}
