// Package tier defines the zoom tiers shared by the aggregation and
// layout engines: bucket durations, calendar alignment, and per-tier
// marker sizing.
package tier

import (
	"fmt"
	"time"
)

// Tier is a discrete zoom level, ordered coarsest to finest.
type Tier uint8

const (
	Year Tier = iota
	Month
	Week
	Day
	Focus
)

// All lists the tiers coarsest-first.
var All = []Tier{Year, Month, Week, Day, Focus}

// Duration returns the tier's canonical bucket width. Calendar-aligned
// buckets may differ (leap years, 31-day months); this is the nominal
// width used for scale math.
func (t Tier) Duration() time.Duration {
	switch t {
	case Year:
		return 365 * 24 * time.Hour
	case Month:
		return 30 * 24 * time.Hour
	case Week:
		return 7 * 24 * time.Hour
	case Day:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// MarkerRadius returns the base marker radius in pixels. Coarser tiers
// render larger since each marker stands for a wider slice of time.
func (t Tier) MarkerRadius() float64 {
	switch t {
	case Year:
		return 22
	case Month:
		return 18
	case Week:
		return 14
	case Day:
		return 10
	default:
		return 8
	}
}

// MinSpacing returns the minimum center-to-center distance in pixels
// between two markers before they merge into a cluster. 2.2 radii
// leaves a visible gap between adjacent untouching markers.
func (t Tier) MinSpacing() float64 {
	return 2.2 * t.MarkerRadius()
}

// BucketStart returns the start of the calendar-aligned bucket
// containing ts: Jan 1 for years, the 1st for months, Monday for
// weeks, midnight for days, the top of the hour for focus. All in UTC.
func (t Tier) BucketStart(ts time.Time) time.Time {
	ts = ts.UTC()
	switch t {
	case Year:
		return time.Date(ts.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Week:
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case Day:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return ts.Truncate(time.Hour)
	}
}

// NextBucket returns the start of the bucket following start.
func (t Tier) NextBucket(start time.Time) time.Time {
	switch t {
	case Year:
		return start.AddDate(1, 0, 0)
	case Month:
		return start.AddDate(0, 1, 0)
	case Week:
		return start.AddDate(0, 0, 7)
	case Day:
		return start.AddDate(0, 0, 1)
	default:
		return start.Add(time.Hour)
	}
}

// Label renders a human-readable description of the bucket starting at
// start, at the tier's precision.
func (t Tier) Label(start time.Time) string {
	switch t {
	case Year:
		return start.Format("2006")
	case Month:
		return start.Format("Jan 2006")
	case Week:
		return "Week of " + start.Format("Jan 2, 2006")
	case Day:
		return start.Format("Jan 2, 2006")
	default:
		return start.Format("Jan 2 15:04")
	}
}

func (t Tier) String() string {
	switch t {
	case Year:
		return "year"
	case Month:
		return "month"
	case Week:
		return "week"
	case Day:
		return "day"
	case Focus:
		return "focus"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Parse converts a tier name back to a Tier.
func Parse(s string) (Tier, error) {
	switch s {
	case "year":
		return Year, nil
	case "month":
		return Month, nil
	case "week":
		return Week, nil
	case "day":
		return Day, nil
	case "focus":
		return Focus, nil
	default:
		return Year, fmt.Errorf("unknown tier %q", s)
	}
}
