package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villrein/internal/domain/track"
)

func TestCollectAnnotatesDistances(t *testing.T) {
	tracks := sampleTracks()
	require.Len(t, tracks, 2)
	for _, tr := range tracks {
		assert.Zero(t, tr.Positions[0].Distance)
		for i := 1; i < len(tr.Positions); i++ {
			assert.Positive(t, tr.Positions[i].Distance)
		}
	}
	assert.Equal(t, "Voksen", tracks[0].AgeString)
}

func TestCollectConcatenatesSlices(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, oslo)
	first := rawTrack(start, 5)
	second := rawTrack(start.Add(24*time.Hour), 3)

	tracks := Collect([]track.RawDocument{
		{VM: []track.RawIndividual{{ID: "a", Name: "first", Positions: first}}},
		{VM: []track.RawIndividual{
			{ID: "b", Name: "other", Positions: second},
			{ID: "a", Name: "renamed", Positions: second},
		}},
		{VM: []track.RawIndividual{{ID: "a", Name: "again", Positions: first[:1]}}},
	})

	require.Len(t, tracks, 2)
	assert.Equal(t, "a", tracks[0].ID)
	assert.Equal(t, "first", tracks[0].Name)
	assert.Len(t, tracks[0].Positions, 9, "slices are appended without deduplication")
	assert.Zero(t, tracks[0].Positions[5].Distance, "each slice starts at zero")
	assert.Equal(t, "b", tracks[1].ID)
}

func TestCollectKeepsUnparseableDates(t *testing.T) {
	tracks := Collect([]track.RawDocument{{VM: []track.RawIndividual{{
		ID:        "a",
		Positions: []track.RawPosition{{Longitude: 7, Latitude: 60, DateTime: "2023-02-30Tgarbage"}},
	}}}})
	require.Len(t, tracks[0].Positions, 1)
	assert.True(t, tracks[0].Positions[0].Timestamp.IsZero())
	assert.Equal(t, "2023-02-30", tracks[0].Positions[0].DayKey())
}
