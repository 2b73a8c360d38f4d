package mutate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeweave/lifeweave/pkg/core"
)

func ts(daysAfter int) *time.Time {
	t := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAfter)
	return &t
}

func TestMergeEvents_RequiresTwo(t *testing.T) {
	_, err := MergeEvents(nil)
	assert.True(t, errors.Is(err, core.ErrInsufficientInput))

	_, err = MergeEvents([]core.TimelineEvent{{ID: "e1"}})
	assert.True(t, errors.Is(err, core.ErrInsufficientInput))
}

func TestMergeEvents_EarliestTimestampWins(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventPhoto, Timestamp: ts(5)}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventPhoto, Timestamp: ts(1)}

	merged, err := MergeEvents([]core.TimelineEvent{e1, e2})
	require.NoError(t, err)
	require.NotNil(t, merged.Timestamp)
	assert.Equal(t, *ts(1), *merged.Timestamp)
	assert.Equal(t, "e2", merged.ID, "identity follows the earliest event")
}

func TestMergeEvents_AssetDeDuplication(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventPhoto, Timestamp: ts(0),
		Assets: []core.MediaAsset{{ID: "a1"}, {ID: "a2"}}}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventPhoto, Timestamp: ts(1),
		Assets: []core.MediaAsset{{ID: "a2"}, {ID: "a3"}}}

	merged, err := MergeEvents([]core.TimelineEvent{e1, e2})
	require.NoError(t, err)

	ids := make([]string, len(merged.Assets))
	for i, a := range merged.Assets {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids)
}

func TestMergeEvents_TagUnionPreservesOrder(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventPhoto, Timestamp: ts(0),
		Tags: []string{"travel", "family"}}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventPhoto, Timestamp: ts(1),
		Tags: []string{"family", "beach"}}

	merged, err := MergeEvents([]core.TimelineEvent{e1, e2})
	require.NoError(t, err)
	assert.Equal(t, []string{"travel", "family", "beach"}, merged.Tags)
}

func TestMergeEvents_MajorityTypeWithChronologicalTieBreak(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventText, Timestamp: ts(0)}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventPhoto, Timestamp: ts(1)}
	e3 := core.TimelineEvent{ID: "e3", Type: core.EventPhoto, Timestamp: ts(2)}

	merged, err := MergeEvents([]core.TimelineEvent{e1, e2, e3})
	require.NoError(t, err)
	assert.Equal(t, core.EventPhoto, merged.Type)

	// Tie between text and photo: text is chronologically first.
	merged, err = MergeEvents([]core.TimelineEvent{e2, e1})
	require.NoError(t, err)
	assert.Equal(t, core.EventText, merged.Type)
}

func TestMergeEvents_SingleKeyAssetSurvives(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventPhoto, Timestamp: ts(0),
		Assets: []core.MediaAsset{{ID: "a1", IsKeyAsset: true}}}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventPhoto, Timestamp: ts(1),
		Assets: []core.MediaAsset{{ID: "a2", IsKeyAsset: true}}}

	merged, err := MergeEvents([]core.TimelineEvent{e1, e2})
	require.NoError(t, err)

	keyCount := 0
	for _, a := range merged.Assets {
		if a.IsKeyAsset {
			keyCount++
		}
	}
	assert.Equal(t, 1, keyCount)
}

func TestMergeEvents_InputsUntouched(t *testing.T) {
	e1 := core.TimelineEvent{ID: "e1", Type: core.EventPhoto, Timestamp: ts(0),
		Tags: []string{"x"}, Assets: []core.MediaAsset{{ID: "a1"}}}
	e2 := core.TimelineEvent{ID: "e2", Type: core.EventText, Timestamp: ts(1),
		Tags: []string{"y"}, Assets: []core.MediaAsset{{ID: "a2"}}}

	_, err := MergeEvents([]core.TimelineEvent{e1, e2})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, e1.Tags)
	assert.Len(t, e1.Assets, 1)
	assert.Equal(t, []string{"y"}, e2.Tags)
}

func splitSource() core.TimelineEvent {
	return core.TimelineEvent{
		ID: "e1", Type: core.EventPhotoBurst, Timestamp: ts(0),
		Title: "Hike",
		Assets: []core.MediaAsset{
			{ID: "a1"}, {ID: "a2"}, {ID: "a3"},
		},
	}
}

func TestSplitEvent_ExactPartition(t *testing.T) {
	src := splitSource()
	children, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0], src.Assets[1]},
		{src.Assets[2]},
	})
	require.NoError(t, err)
	require.Len(t, children, 2)

	assert.Equal(t, "e1-split-1", children[0].ID)
	assert.Len(t, children[0].Assets, 2)
	assert.Len(t, children[1].Assets, 1)
	assert.Equal(t, "Hike", children[0].Title, "children inherit metadata")
	assert.Equal(t, src.Timestamp, children[1].Timestamp)
}

func TestSplitEvent_SingleGroupIsValidPartition(t *testing.T) {
	src := splitSource()
	children, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0], src.Assets[1], src.Assets[2]},
	})
	require.NoError(t, err, "one group tiles the assets exactly")
	require.Len(t, children, 1)
	assert.Equal(t, "e1-split-1", children[0].ID)
	assert.Len(t, children[0].Assets, 3)
}

func TestSplitEvent_RequiresGroups(t *testing.T) {
	_, err := SplitEvent(splitSource(), nil)
	assert.True(t, errors.Is(err, core.ErrInsufficientInput))
}

func TestSplitEvent_RejectsEmptyGroup(t *testing.T) {
	src := splitSource()
	_, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0], src.Assets[1], src.Assets[2]},
		{},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidPartition))
}

func TestSplitEvent_RejectsMissingAsset(t *testing.T) {
	src := splitSource()
	_, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0]},
		{src.Assets[1]},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidPartition), "a3 left unassigned")
}

func TestSplitEvent_RejectsDuplicateAsset(t *testing.T) {
	src := splitSource()
	_, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0], src.Assets[1]},
		{src.Assets[1], src.Assets[2]},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidPartition))
}

func TestSplitEvent_RejectsForeignAsset(t *testing.T) {
	src := splitSource()
	_, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0], src.Assets[1]},
		{{ID: "stranger"}},
	})
	assert.True(t, errors.Is(err, core.ErrInvalidPartition))
}

func TestSplitThenMerge_RestoresAssetSet(t *testing.T) {
	src := splitSource()
	children, err := SplitEvent(src, [][]core.MediaAsset{
		{src.Assets[0]},
		{src.Assets[1], src.Assets[2]},
	})
	require.NoError(t, err)

	merged, err := MergeEvents(children)
	require.NoError(t, err)

	got := make(map[string]bool)
	for _, a := range merged.Assets {
		got[a.ID] = true
	}
	want := make(map[string]bool)
	for _, a := range src.Assets {
		want[a.ID] = true
	}
	assert.Equal(t, want, got)
}

func TestUpdateKeyAsset_SetsSoleKey(t *testing.T) {
	event := core.TimelineEvent{
		ID: "e1",
		Assets: []core.MediaAsset{
			{ID: "a1", IsKeyAsset: true},
			{ID: "a2"},
		},
	}

	updated, err := UpdateKeyAsset(event, event.Assets[1])
	require.NoError(t, err)

	assert.False(t, updated.Assets[0].IsKeyAsset)
	assert.True(t, updated.Assets[1].IsKeyAsset)
	assert.True(t, event.Assets[0].IsKeyAsset, "input unchanged")
}

func TestUpdateKeyAsset_RejectsForeignAsset(t *testing.T) {
	event := core.TimelineEvent{
		ID:     "e1",
		Assets: []core.MediaAsset{{ID: "a1"}},
	}

	_, err := UpdateKeyAsset(event, core.MediaAsset{ID: "other"})
	assert.True(t, errors.Is(err, core.ErrInsufficientInput))
	assert.Len(t, event.Assets, 1)
	assert.False(t, event.Assets[0].IsKeyAsset)
}
