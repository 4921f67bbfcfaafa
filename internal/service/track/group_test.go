package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villrein/internal/domain/track"
)

func TestGroupDaysPreservesDistance(t *testing.T) {
	tracks := sampleTracks()
	for _, g := range []track.Granularity{track.Day, track.Week} {
		grouped := GroupDays(tracks, g)
		require.Len(t, grouped, len(tracks))
		for i := range tracks {
			assert.InDelta(t, totalDistance(tracks[i].Positions), totalDistance(grouped[i].Positions), 1e-6,
				"granularity %s track %s", g, tracks[i].ID)
		}
	}
}

func TestGroupDaysOnePointPerDay(t *testing.T) {
	tracks := sampleTracks()
	grouped := GroupDays(tracks, track.Day)
	for i := range tracks {
		days := distinctDays(tracks[i].Positions)
		assert.Len(t, grouped[i].Positions, days)
		assert.Equal(t, days, distinctDays(grouped[i].Positions))
	}
}

func TestGroupDaysKeepsIdentity(t *testing.T) {
	tracks := sampleTracks()
	grouped := GroupDays(tracks, track.Week)
	assert.Equal(t, "Rein 1", grouped[0].Name)
	assert.Equal(t, "Voksen", grouped[0].AgeString)
	assert.NotEqual(t, len(tracks[0].Positions), len(grouped[0].Positions))
}

func TestGroupDaysEncounterOrder(t *testing.T) {
	tr := track.AnimalTrack{Positions: []track.TrackPoint{
		pointAt("2023-05-02T10:00:00+01:00", 7, 60, 0),
		pointAt("2023-05-01T10:00:00+01:00", 7, 60, 5),
	}}
	grouped := GroupDays([]track.AnimalTrack{tr}, track.Day)
	require.Len(t, grouped[0].Positions, 2)
	assert.Equal(t, "2023-05-02T10:00:00+01:00", grouped[0].Positions[0].Date)
}
