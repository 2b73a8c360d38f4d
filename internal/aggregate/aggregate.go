// Package aggregate groups timeline events into calendar-aligned time
// buckets ("bubbles") for the overview layouts. Aggregation is a pure
// function of the event collection and the zoom tier.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Result carries the bubbles plus a diagnostic count of events that
// were skipped because they have neither a precise nor a fuzzy date.
type Result struct {
	Bubbles       []core.BubbleData
	ExcludedCount int
}

// sizeMultiplier maps a bucket's event count to a visual scale in
// [0.6, 1.0]. Square root keeps bubble area readable when activity
// varies by orders of magnitude between buckets.
func sizeMultiplier(count, maxCount int) float64 {
	if maxCount <= 0 {
		return 0.6
	}
	return 0.6 + 0.4*math.Sqrt(float64(count)/float64(maxCount))
}

type placedEvent struct {
	event *core.TimelineEvent
	at    int64 // unix nanos, for cheap stable sorting
}

// Aggregate buckets events at the given tier. Buckets are contiguous
// calendar-aligned intervals; only non-empty buckets are emitted, in
// chronological order. Events without a resolvable date are excluded
// and counted, never fatal.
func Aggregate(events []core.TimelineEvent, tr tier.Tier) Result {
	var res Result

	placed := make([]placedEvent, 0, len(events))
	for i := range events {
		when, ok := events[i].When()
		if !ok {
			res.ExcludedCount++
			continue
		}
		placed = append(placed, placedEvent{event: &events[i], at: when.UnixNano()})
	}
	if len(placed) == 0 {
		return res
	}

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].at < placed[j].at
	})

	var (
		bubbles  []core.BubbleData
		builder  *bucketBuilder
		maxCount int
	)
	flush := func() {
		if builder == nil {
			return
		}
		b := builder.build()
		if b.EventCount > maxCount {
			maxCount = b.EventCount
		}
		bubbles = append(bubbles, b)
		builder = nil
	}

	for _, p := range placed {
		when, _ := p.event.When()
		start := tr.BucketStart(when)
		if builder == nil || !builder.start.Equal(start) {
			flush()
			builder = newBucketBuilder(tr, start)
		}
		builder.add(p.event)
	}
	flush()

	for i := range bubbles {
		bubbles[i].SizeMultiplier = sizeMultiplier(bubbles[i].EventCount, maxCount)
	}

	res.Bubbles = bubbles
	return res
}

// bucketBuilder accumulates the statistics of one bucket as events
// arrive in chronological order.
type bucketBuilder struct {
	tier  tier.Tier
	start time.Time

	count        int
	typeCounts   map[core.EventType]int
	typeOrder    []core.EventType // first-encounter order, for tie breaking
	personCounts map[core.PersonID]int
	participants []core.PersonID // union, first-appearance order
}

func newBucketBuilder(tr tier.Tier, start time.Time) *bucketBuilder {
	return &bucketBuilder{
		tier:       tr,
		start:      start,
		typeCounts: make(map[core.EventType]int),
	}
}

func (b *bucketBuilder) add(e *core.TimelineEvent) {
	b.count++

	if _, seen := b.typeCounts[e.Type]; !seen {
		b.typeOrder = append(b.typeOrder, e.Type)
	}
	b.typeCounts[e.Type]++

	for _, p := range e.ParticipantIDs {
		if b.personCounts == nil {
			b.personCounts = make(map[core.PersonID]int)
		}
		if b.personCounts[p] == 0 {
			b.participants = append(b.participants, p)
		}
		b.personCounts[p]++
	}
}

// dominant returns the majority event type; ties go to the type first
// encountered in chronological order.
func (b *bucketBuilder) dominant() core.EventType {
	var (
		best      core.EventType
		bestCount int
	)
	for _, et := range b.typeOrder {
		if b.typeCounts[et] > bestCount {
			best = et
			bestCount = b.typeCounts[et]
		}
	}
	return best
}

func (b *bucketBuilder) build() core.BubbleData {
	return core.BubbleData{
		Start:            b.start,
		End:              b.tier.NextBucket(b.start),
		EventCount:       b.count,
		DominantCategory: b.dominant(),
		PersonCounts:     b.personCounts,
		ParticipantIDs:   b.participants,
		Label:            b.tier.Label(b.start),
	}
}
