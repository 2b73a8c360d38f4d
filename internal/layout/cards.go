package layout

import "github.com/lifeweave/lifeweave/pkg/core"

// placeCards computes non-overlapping detail cards for Maximal mode.
// Cards alternate to either side of the axis; within each side they
// are placed greedily in chronological order and pushed along the axis
// just far enough to clear the previous card, so no two cards on one
// side ever overlap. Each card gets a straight connector from its
// marker to the card's near edge.
func placeCards(nodes []core.LayoutNode, cfg Config) {
	// lastEnd tracks, per side, how far along the axis the previous
	// card extends.
	lastEnd := map[int]float64{+1: negInf, -1: negInf}

	side := +1
	for i := range nodes {
		along := nodes[i].Offset - cardAlongSize(cfg)/2
		if min := lastEnd[side] + cardGap; along < min {
			along = min
		}
		lastEnd[side] = along + cardAlongSize(cfg)

		rect := cardRect(along, side, &nodes[i], cfg)
		nodes[i].CardRect = &rect

		conn := connector(nodes[i].MarkerCenter, rect, side, cfg)
		nodes[i].Connector = &conn

		side = -side
	}
}

const negInf = -1e18

// cardAlongSize is the card's extent along the layout axis.
func cardAlongSize(cfg Config) float64 {
	if cfg.Orientation == core.Horizontal {
		return cardWidth
	}
	return cardHeight
}

// cardRect builds the card rectangle for a node on the given side of
// the axis (+1 = right/below the centerline, -1 = left/above).
func cardRect(along float64, side int, n *core.LayoutNode, cfg Config) core.Rect {
	clearance := n.MarkerRadius + cardSpacing
	if cfg.Orientation == core.Horizontal {
		y := cfg.Viewport.Height/2 + clearance
		if side < 0 {
			y = cfg.Viewport.Height/2 - clearance - cardHeight
		}
		return core.Rect{X: along, Y: y, Width: cardWidth, Height: cardHeight}
	}

	x := cfg.Viewport.Width/2 + clearance
	if side < 0 {
		x = cfg.Viewport.Width/2 - clearance - cardWidth
	}
	return core.Rect{X: x, Y: along, Width: cardWidth, Height: cardHeight}
}

// connector runs from the marker center to the midpoint of the card's
// axis-facing edge.
func connector(marker core.Position2D, rect core.Rect, side int, cfg Config) [2]core.Position2D {
	var edge core.Position2D
	if cfg.Orientation == core.Horizontal {
		edge = core.Position2D{X: rect.X + rect.Width/2, Y: rect.Y}
		if side < 0 {
			edge.Y = rect.Y + rect.Height
		}
	} else {
		edge = core.Position2D{X: rect.X, Y: rect.Y + rect.Height/2}
		if side < 0 {
			edge.X = rect.X + rect.Width
		}
	}
	return [2]core.Position2D{marker, edge}
}
