// Package layout positions events along a single time axis for a given
// viewport, zoom tier, and display density, merging markers that would
// overlap into synthetic cluster nodes. Layout is a pure function of
// its inputs; clustering is re-evaluated from scratch on every call.
package layout

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/internal/util"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// RenderNode is the undecorated input candidate, derived 1:1 from an
// event before overlap resolution.
type RenderNode struct {
	EventID string
	Type    core.EventType
	Time    time.Time
	Label   string
}

// NodesFromEvents builds render candidates from events. Events without
// a resolvable date are skipped and counted.
func NodesFromEvents(events []core.TimelineEvent) (nodes []RenderNode, excluded int) {
	for i := range events {
		when, ok := events[i].When()
		if !ok {
			excluded++
			continue
		}
		nodes = append(nodes, RenderNode{
			EventID: events[i].ID,
			Type:    events[i].Type,
			Time:    when,
			Label:   util.Truncate(events[i].Title, maxLabelRunes),
		})
	}
	return nodes, excluded
}

// Config holds the view parameters for one layout pass.
type Config struct {
	Tier         tier.Tier
	Mode         core.DisplayMode
	Orientation  core.Orientation
	Viewport     core.Size
	PixelsPerDay float64
	MinDate      time.Time
}

const (
	cardWidth   = 180.0
	cardHeight  = 64.0
	cardGap     = 12.0
	cardSpacing = 18.0 // marker edge to card edge

	// Card labels longer than this are cut with an ellipsis.
	maxLabelRunes = 48

	// Cluster markers grow with member count but stay below twice the
	// tier's base radius so dense ranges don't swallow the axis.
	clusterGrowth    = 0.25
	clusterMaxFactor = 2.0
)

// Layout positions the given candidates. Candidates closer together
// than the tier's minimum spacing merge transitively into clusters at
// the centroid of the merged span. In Maximal mode each node also gets
// a card rect placed greedily on alternating sides of the axis, never
// overlapping previously placed cards.
func Layout(nodes []RenderNode, cfg Config) ([]core.LayoutNode, error) {
	if cfg.PixelsPerDay <= 0 {
		return nil, fmt.Errorf("%w: pixelsPerDay must be positive, got %v",
			core.ErrInvalidConfiguration, cfg.PixelsPerDay)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	sorted := make([]RenderNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	offsets := make([]float64, len(sorted))
	for i, n := range sorted {
		days := n.Time.Sub(cfg.MinDate).Hours() / 24
		offsets[i] = days * cfg.PixelsPerDay
	}

	out := buildNodes(sorted, offsets, cfg)
	if cfg.Mode == core.Maximal {
		placeCards(out, cfg)
	}
	return out, nil
}

// buildNodes sweeps the chronologically sorted candidates and merges
// chains of close markers into single clusters.
func buildNodes(sorted []RenderNode, offsets []float64, cfg Config) []core.LayoutNode {
	minSpacing := cfg.Tier.MinSpacing()

	var out []core.LayoutNode
	clusterSeq := 0

	i := 0
	for i < len(sorted) {
		// Extend the group while the next marker sits within minimum
		// spacing of the previous one. Transitive: a chain of close
		// markers becomes one cluster.
		j := i + 1
		for j < len(sorted) && offsets[j]-offsets[j-1] < minSpacing {
			j++
		}

		if j-i == 1 {
			out = append(out, eventNode(sorted[i], offsets[i], cfg))
		} else {
			out = append(out, clusterNode(sorted[i:j], offsets[i:j], clusterSeq, cfg))
			clusterSeq++
		}
		i = j
	}
	return out
}

func eventNode(n RenderNode, offset float64, cfg Config) core.LayoutNode {
	return core.LayoutNode{
		Kind:         core.NodeEvent,
		EventID:      n.EventID,
		Type:         n.Type,
		Label:        n.Label,
		Offset:       offset,
		MarkerCenter: axisPoint(offset, cfg),
		MarkerRadius: cfg.Tier.MarkerRadius(),
	}
}

func clusterNode(members []RenderNode, offsets []float64, seq int, cfg Config) core.LayoutNode {
	centroid := 0.0
	for _, o := range offsets {
		centroid += o
	}
	centroid /= float64(len(offsets))

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.EventID
	}

	return core.LayoutNode{
		Kind:           core.NodeCluster,
		ClusterID:      fmt.Sprintf("cluster-%d", seq),
		Label:          fmt.Sprintf("%d events", len(members)),
		Count:          len(members),
		DominantType:   dominantType(members),
		MemberEventIDs: ids,
		Offset:         centroid,
		MarkerCenter:   axisPoint(centroid, cfg),
		MarkerRadius:   clusterRadius(cfg.Tier, len(members)),
	}
}

// dominantType is the majority event type among members; ties go to
// the type encountered first in chronological order.
func dominantType(members []RenderNode) core.EventType {
	counts := make(map[core.EventType]int)
	var order []core.EventType
	for _, m := range members {
		if counts[m.Type] == 0 {
			order = append(order, m.Type)
		}
		counts[m.Type]++
	}
	var (
		best      core.EventType
		bestCount int
	)
	for _, et := range order {
		if counts[et] > bestCount {
			best = et
			bestCount = counts[et]
		}
	}
	return best
}

func clusterRadius(tr tier.Tier, count int) float64 {
	base := tr.MarkerRadius()
	r := base * (1 + clusterGrowth*math.Sqrt(float64(count-1)))
	if max := base * clusterMaxFactor; r > max {
		return max
	}
	return r
}

// axisPoint converts a 1-D axis offset into the 2-D marker center:
// along the axis at the offset, centered on the perpendicular.
func axisPoint(offset float64, cfg Config) core.Position2D {
	if cfg.Orientation == core.Horizontal {
		return core.Position2D{X: offset, Y: cfg.Viewport.Height / 2}
	}
	return core.Position2D{X: cfg.Viewport.Width / 2, Y: offset}
}
