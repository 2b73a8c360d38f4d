package flow

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// smoothPath converts an ordered node list into cubic Bezier segments
// using centripetal-flavored Catmull-Rom tangents. The curve passes
// through every node with no sharp corners except at the endpoints.
// Fewer than two nodes produce no segments.
func smoothPath(nodes []core.RiverFlowNode) []core.CurveSegment {
	if len(nodes) < 2 {
		return nil
	}

	pts := make([]core.Position2D, len(nodes))
	for i, n := range nodes {
		pts[i] = n.Position
	}

	segs := make([]core.CurveSegment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		p1, p2 := pts[i], pts[i+1]

		// Neighbor points, clamped at the ends.
		p0, p3 := p1, p2
		if i > 0 {
			p0 = pts[i-1]
		}
		if i+2 < len(pts) {
			p3 = pts[i+2]
		}

		// Catmull-Rom to Bezier control point conversion.
		segs = append(segs, core.CurveSegment{
			Start: p1,
			Ctrl1: core.Position2D{
				X: p1.X + (p2.X-p0.X)/6,
				Y: p1.Y + (p2.Y-p0.Y)/6,
			},
			Ctrl2: core.Position2D{
				X: p2.X - (p3.X-p1.X)/6,
				Y: p2.Y - (p3.Y-p1.Y)/6,
			},
			End: p2,
		})
	}
	return segs
}

// SampleLineString flattens a path's curve into a geom.LineString with
// samplesPerSegment interior samples per cubic span, for consumers
// that want plain polyline geometry (hit testing, bounds, export).
func SampleLineString(path core.RiverFlowPath, samplesPerSegment int) (geom.LineString, error) {
	if len(path.Path) == 0 {
		return geom.LineString{}, fmt.Errorf("path for %s has no segments", path.PersonID)
	}
	if samplesPerSegment < 1 {
		samplesPerSegment = 8
	}

	flat := make([]float64, 0, (len(path.Path)*samplesPerSegment+1)*2)
	first := path.Path[0].Start
	flat = append(flat, first.X, first.Y)

	for _, seg := range path.Path {
		for s := 1; s <= samplesPerSegment; s++ {
			t := float64(s) / float64(samplesPerSegment)
			p := seg.PointAt(t)
			flat = append(flat, p.X, p.Y)
		}
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("line string for %s: %w", path.PersonID, err)
	}
	return ls, nil
}
