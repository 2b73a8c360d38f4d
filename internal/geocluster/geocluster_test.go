package geocluster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeweave/lifeweave/pkg/core"
)

func located(id string, lon, lat float64) core.TimelineEvent {
	return core.TimelineEvent{
		ID:       id,
		Type:     core.EventLocation,
		Location: &core.Location{Longitude: lon, Latitude: lat},
	}
}

func TestProject3857(t *testing.T) {
	pt, err := Project3857(core.Location{Longitude: 0, Latitude: 0})
	require.NoError(t, err)
	xy, ok := pt.XY()
	require.True(t, ok)
	assert.InDelta(t, 0, xy.X, 1e-6)
	assert.InDelta(t, 0, xy.Y, 1e-6)

	pt, err = Project3857(core.Location{Longitude: 180, Latitude: 0})
	require.NoError(t, err)
	xy, _ = pt.XY()
	assert.InDelta(t, 20037508.34, xy.X, 1.0)
}

func TestProject3857_RejectsOutOfRange(t *testing.T) {
	_, err := Project3857(core.Location{Longitude: 0, Latitude: 91})
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
}

func TestCluster_RejectsNonPositiveCellSize(t *testing.T) {
	_, err := Cluster(nil, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
}

func TestCluster_GroupsNearbyEvents(t *testing.T) {
	events := []core.TimelineEvent{
		located("e1", 13.40, 52.52), // Berlin
		located("e2", 13.41, 52.52), // ~700m east
		located("e3", 2.35, 48.86),  // Paris
	}

	res, err := Cluster(events, 50_000) // 50km cells
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)

	berlin := res.Clusters[0]
	assert.Equal(t, 2, berlin.Count)
	assert.Equal(t, []string{"e1", "e2"}, berlin.MemberEventIDs)

	paris := res.Clusters[1]
	assert.Equal(t, 1, paris.Count)
	assert.Equal(t, []string{"e3"}, paris.MemberEventIDs)
}

func TestCluster_CenterIsCentroid(t *testing.T) {
	events := []core.TimelineEvent{
		located("e1", 13.40, 52.52),
		located("e2", 13.41, 52.52),
	}

	res, err := Cluster(events, 100_000)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	c := res.Clusters[0]
	xy, ok := c.Center.XY()
	require.True(t, ok)
	assert.GreaterOrEqual(t, xy.X, c.Bounds.X)
	assert.LessOrEqual(t, xy.X, c.Bounds.X+c.Bounds.Width)
	assert.Greater(t, c.Bounds.Width, 0.0, "two distinct members span a box")
}

func TestCluster_CountsUnlocatedEvents(t *testing.T) {
	events := []core.TimelineEvent{
		located("e1", 13.40, 52.52),
		{ID: "e2", Type: core.EventText},
	}

	res, err := Cluster(events, 50_000)
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 1)
	assert.Equal(t, 1, res.UnlocatedCount)
}

func TestCluster_FinerCellsSplitClusters(t *testing.T) {
	events := []core.TimelineEvent{
		located("e1", 13.40, 52.52),
		located("e2", 13.41, 52.52),
	}

	res, err := Cluster(events, 100) // 100m cells
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 2)
}
