package core

import "fmt"

// Position2D is a point in view coordinates (pixels).
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a viewport extent in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned box in view coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Center returns the midpoint of the rect.
func (r Rect) Center() Position2D {
	return Position2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Color is an opaque sRGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the #rrggbb form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CurveSegment is one cubic Bezier span of a flow path.
type CurveSegment struct {
	Start Position2D `json:"start"`
	Ctrl1 Position2D `json:"ctrl1"`
	Ctrl2 Position2D `json:"ctrl2"`
	End   Position2D `json:"end"`
}

// PointAt evaluates the cubic at parameter t in [0,1].
func (s CurveSegment) PointAt(t float64) Position2D {
	u := 1 - t
	return Position2D{
		X: u*u*u*s.Start.X + 3*u*u*t*s.Ctrl1.X + 3*u*t*t*s.Ctrl2.X + t*t*t*s.End.X,
		Y: u*u*u*s.Start.Y + 3*u*u*t*s.Ctrl1.Y + 3*u*t*t*s.Ctrl2.Y + t*t*t*s.End.Y,
	}
}
