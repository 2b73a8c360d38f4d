// Package geocluster builds the clustered map view: located events are
// projected to Web Mercator (EPSG:3857) and grouped into grid cells
// whose size tracks the map zoom, mirroring how close markers merge
// into cluster nodes on the time axis.
package geocluster

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// ErrInvalidCoordinates is returned when a location is outside WGS84
// bounds.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// MapCluster is one map marker: a single located event or a group of
// nearby ones. Coordinates are EPSG:3857 meters.
type MapCluster struct {
	Center         geom.Point
	Count          int
	MemberEventIDs []string
	Bounds         core.Rect
}

// Result carries the clusters plus the count of events that have no
// location and therefore do not appear on the map.
type Result struct {
	Clusters       []MapCluster
	UnlocatedCount int
}

// Project3857 converts a WGS84 location to a Web Mercator point.
func Project3857(loc core.Location) (geom.Point, error) {
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return geom.Point{}, fmt.Errorf("%w: lon=%v lat=%v", ErrInvalidCoordinates, loc.Longitude, loc.Latitude)
	}

	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(loc.Longitude, loc.Latitude, 0)
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
	if err != nil {
		return geom.Point{}, fmt.Errorf("projecting lon=%v lat=%v: %w", loc.Longitude, loc.Latitude, err)
	}
	return pt, nil
}

// Cluster groups located events into square grid cells of cellSize
// meters. Clusters are returned in first-appearance order of the input
// events, each centered on the centroid of its members. cellSize must
// be positive.
func Cluster(events []core.TimelineEvent, cellSize float64) (Result, error) {
	if cellSize <= 0 {
		return Result{}, fmt.Errorf("%w: cellSize must be positive, got %v",
			core.ErrInvalidConfiguration, cellSize)
	}

	type cell struct {
		ids        []string
		sumX, sumY float64
		minX, minY float64
		maxX, maxY float64
	}

	var res Result
	cells := make(map[[2]int64]*cell)
	var order [][2]int64

	for i := range events {
		if events[i].Location == nil {
			res.UnlocatedCount++
			continue
		}
		pt, err := Project3857(*events[i].Location)
		if err != nil {
			res.UnlocatedCount++
			continue
		}
		xy, _ := pt.XY()

		key := [2]int64{
			int64(math.Floor(xy.X / cellSize)),
			int64(math.Floor(xy.Y / cellSize)),
		}
		c, ok := cells[key]
		if !ok {
			c = &cell{minX: xy.X, minY: xy.Y, maxX: xy.X, maxY: xy.Y}
			cells[key] = c
			order = append(order, key)
		}
		c.ids = append(c.ids, events[i].ID)
		c.sumX += xy.X
		c.sumY += xy.Y
		c.minX = math.Min(c.minX, xy.X)
		c.minY = math.Min(c.minY, xy.Y)
		c.maxX = math.Max(c.maxX, xy.X)
		c.maxY = math.Max(c.maxY, xy.Y)
	}

	for _, key := range order {
		c := cells[key]
		n := float64(len(c.ids))
		center, err := geom.NewPoint(geom.Coordinates{
			XY: geom.XY{X: c.sumX / n, Y: c.sumY / n},
		})
		if err != nil {
			return Result{}, fmt.Errorf("cluster centroid: %w", err)
		}
		res.Clusters = append(res.Clusters, MapCluster{
			Center:         center,
			Count:          len(c.ids),
			MemberEventIDs: c.ids,
			Bounds: core.Rect{
				X:      c.minX,
				Y:      c.minY,
				Width:  c.maxX - c.minX,
				Height: c.maxY - c.minY,
			},
		})
	}
	return res, nil
}
