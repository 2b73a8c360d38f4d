package gormstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeweave/lifeweave/pkg/core"
)

func TestConvert_RoundTrip(t *testing.T) {
	ts := time.Date(2021, time.June, 12, 14, 30, 0, 0, time.UTC)
	in := core.TimelineEvent{
		ID:          "e1",
		Type:        core.EventPhoto,
		Title:       "Beach day",
		Description: "Trip to the coast",
		Timestamp:   &ts,
		Tags:        []string{"travel", "family"},
		Assets: []core.MediaAsset{
			{ID: "a1", Type: core.AssetPhoto, LocalPath: "/photos/a1.jpg", IsKeyAsset: true},
			{ID: "a2", Type: core.AssetVideo, CloudURL: "https://cdn.example/a2.mp4"},
		},
		Location:       &core.Location{Name: "Brighton", Longitude: -0.1372, Latitude: 50.8225},
		ParticipantIDs: []core.PersonID{"alice", "bob"},
		Attrs:          core.Attrs{"camera": core.StringAttr("X100V")},
	}

	rec := CoreToRecord(in)
	assert.Equal(t, "e1", rec.EventID)
	assert.True(t, rec.Timestamp.Valid)
	assert.False(t, rec.FuzzyYear.Valid)

	out, err := RecordToCore(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConvert_FuzzyDateColumns(t *testing.T) {
	in := core.TimelineEvent{
		ID:        "e2",
		Type:      core.EventMilestone,
		FuzzyDate: &core.FuzzyDate{Year: 1995, Month: time.July},
	}

	rec := CoreToRecord(in)
	require.True(t, rec.FuzzyYear.Valid)
	assert.Equal(t, int32(1995), rec.FuzzyYear.Int32)
	require.True(t, rec.FuzzyMonth.Valid)
	assert.Equal(t, int32(7), rec.FuzzyMonth.Int32)
	assert.False(t, rec.FuzzyDay.Valid)
	assert.False(t, rec.Timestamp.Valid)

	out, err := RecordToCore(rec)
	require.NoError(t, err)
	require.NotNil(t, out.FuzzyDate)
	assert.Equal(t, time.July, out.FuzzyDate.Month, "month survives the column round trip typed")
	assert.Equal(t, *in.FuzzyDate, *out.FuzzyDate)
	assert.Nil(t, out.Timestamp)
}

func TestConvert_EmptyCollections(t *testing.T) {
	rec := CoreToRecord(core.TimelineEvent{ID: "e3", Type: core.EventText})
	assert.Equal(t, "[]", string(rec.Assets))
	assert.Equal(t, "[]", string(rec.Tags))
	assert.Equal(t, "{}", string(rec.Attrs))

	out, err := RecordToCore(rec)
	require.NoError(t, err)
	assert.Empty(t, out.Assets)
	assert.Empty(t, out.Tags)
	assert.Nil(t, out.Attrs)
	assert.Nil(t, out.Location)
}

func TestConvert_RejectsBadColumn(t *testing.T) {
	rec := CoreToRecord(core.TimelineEvent{ID: "e4", Type: core.EventText})
	rec.Assets = []byte(`{"not":"a list"}`)

	_, err := RecordToCore(rec)
	assert.Error(t, err)
}
