package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

func at(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, tier.Month)
	assert.Empty(t, res.Bubbles)
	assert.Zero(t, res.ExcludedCount)
}

func TestAggregate_PartitionCompleteness(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventPhoto, Timestamp: at(2022, time.January, 3, 10)},
		{ID: "e2", Type: core.EventText, Timestamp: at(2022, time.January, 20, 9)},
		{ID: "e3", Type: core.EventPhoto, Timestamp: at(2022, time.March, 5, 14)},
		{ID: "e4", Type: core.EventMilestone, FuzzyDate: &core.FuzzyDate{Year: 2022, Month: time.June}},
		{ID: "e5", Type: core.EventText}, // no date at all
	}

	for _, tr := range tier.All {
		res := Aggregate(events, tr)

		total := 0
		for _, b := range res.Bubbles {
			total += b.EventCount
		}
		assert.Equal(t, 4, total, "tier %s", tr)
		assert.Equal(t, 1, res.ExcludedCount, "tier %s", tr)
	}
}

func TestAggregate_BucketsDisjointAndOrdered(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventPhoto, Timestamp: at(2021, time.December, 30, 8)},
		{ID: "e2", Type: core.EventPhoto, Timestamp: at(2022, time.January, 2, 8)},
		{ID: "e3", Type: core.EventPhoto, Timestamp: at(2022, time.February, 10, 8)},
		{ID: "e4", Type: core.EventPhoto, Timestamp: at(2022, time.February, 27, 8)},
	}

	res := Aggregate(events, tier.Month)
	require.Len(t, res.Bubbles, 3)

	for i, b := range res.Bubbles {
		assert.True(t, b.Start.Before(b.End))
		if i > 0 {
			prev := res.Bubbles[i-1]
			assert.False(t, b.Start.Before(prev.Start), "bubbles out of order")
			assert.False(t, b.Start.Before(prev.End), "bubbles overlap")
		}
	}
}

func TestAggregate_CalendarAlignment(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventPhoto, Timestamp: at(2022, time.August, 17, 23)},
	}

	res := Aggregate(events, tier.Year)
	require.Len(t, res.Bubbles, 1)
	assert.Equal(t, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), res.Bubbles[0].Start)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), res.Bubbles[0].End)
	assert.Equal(t, "2022", res.Bubbles[0].Label)
}

func TestAggregate_EmptyBucketsOmitted(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventPhoto, Timestamp: at(2022, time.January, 1, 0)},
		{ID: "e2", Type: core.EventPhoto, Timestamp: at(2022, time.December, 1, 0)},
	}

	res := Aggregate(events, tier.Month)
	assert.Len(t, res.Bubbles, 2, "the ten silent months in between emit nothing")
}

func TestAggregate_DominantCategory_TieBreakChronological(t *testing.T) {
	// Same week, one photo and one text: the earlier type wins the tie.
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventText, Timestamp: at(2022, time.August, 16, 9)},
		{ID: "e2", Type: core.EventPhoto, Timestamp: at(2022, time.August, 15, 9)},
	}

	res := Aggregate(events, tier.Week)
	require.Len(t, res.Bubbles, 1)
	assert.Equal(t, 2, res.Bubbles[0].EventCount)
	assert.Equal(t, core.EventPhoto, res.Bubbles[0].DominantCategory)
}

func TestAggregate_DominantCategory_Majority(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventText, Timestamp: at(2022, time.August, 15, 9)},
		{ID: "e2", Type: core.EventPhoto, Timestamp: at(2022, time.August, 15, 10)},
		{ID: "e3", Type: core.EventPhoto, Timestamp: at(2022, time.August, 15, 11)},
	}

	res := Aggregate(events, tier.Day)
	require.Len(t, res.Bubbles, 1)
	assert.Equal(t, core.EventPhoto, res.Bubbles[0].DominantCategory)
}

func TestAggregate_PersonCounts(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventPhoto, Timestamp: at(2022, time.May, 2, 9),
			ParticipantIDs: []core.PersonID{"alice", "bob"}},
		{ID: "e2", Type: core.EventPhoto, Timestamp: at(2022, time.May, 3, 9),
			ParticipantIDs: []core.PersonID{"alice"}},
		{ID: "e3", Type: core.EventPhoto, Timestamp: at(2022, time.May, 4, 9)},
	}

	res := Aggregate(events, tier.Month)
	require.Len(t, res.Bubbles, 1)

	b := res.Bubbles[0]
	assert.Equal(t, 2, b.PersonCounts["alice"])
	assert.Equal(t, 1, b.PersonCounts["bob"])
	assert.Equal(t, []core.PersonID{"alice", "bob"}, b.ParticipantIDs)
	assert.Len(t, b.PersonCounts, 2, "participant-free events tally nobody")
}

func TestAggregate_SizeMultiplier_SubLinearMonotonic(t *testing.T) {
	var events []core.TimelineEvent
	// January: 16 events, February: 4, March: 1.
	for i := 0; i < 16; i++ {
		events = append(events, core.TimelineEvent{
			ID: "jan", Type: core.EventPhoto, Timestamp: at(2022, time.January, 1+i%28, 9)})
	}
	for i := 0; i < 4; i++ {
		events = append(events, core.TimelineEvent{
			ID: "feb", Type: core.EventPhoto, Timestamp: at(2022, time.February, 1+i, 9)})
	}
	events = append(events, core.TimelineEvent{
		ID: "mar", Type: core.EventPhoto, Timestamp: at(2022, time.March, 1, 9)})

	res := Aggregate(events, tier.Month)
	require.Len(t, res.Bubbles, 3)

	jan, feb, mar := res.Bubbles[0], res.Bubbles[1], res.Bubbles[2]
	assert.InDelta(t, 1.0, jan.SizeMultiplier, 1e-9, "busiest bucket tops out")
	assert.Greater(t, jan.SizeMultiplier, feb.SizeMultiplier)
	assert.Greater(t, feb.SizeMultiplier, mar.SizeMultiplier)

	// Sub-linear: 4x the events is only 2x the normalized scale term.
	assert.InDelta(t, 0.6+0.4*0.5, feb.SizeMultiplier, 1e-9)
	assert.GreaterOrEqual(t, mar.SizeMultiplier, 0.6)
}

func TestAggregate_FuzzyDateUsesMidpoint(t *testing.T) {
	events := []core.TimelineEvent{
		{ID: "e1", Type: core.EventMilestone, FuzzyDate: &core.FuzzyDate{Year: 2020}},
	}

	res := Aggregate(events, tier.Month)
	require.Len(t, res.Bubbles, 1)
	assert.Equal(t, time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC), res.Bubbles[0].Start)
}
