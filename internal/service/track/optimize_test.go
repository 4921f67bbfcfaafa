package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villrein/internal/domain/track"
)

func TestOptimizeScenario(t *testing.T) {
	input := track.AnimalTrack{
		ID: "a",
		Positions: []track.TrackPoint{
			pointAt("2023-05-01T08:00:00+01:00", 7.00, 60.00, 0),
			pointAt("2023-05-01T09:00:00+01:00", 7.01, 60.00, 50),
			pointAt("2023-05-01T10:00:00+01:00", 7.01, 60.01, 50),
			pointAt("2023-05-01T11:00:00+01:00", 7.02, 60.01, 50),
			pointAt("2023-05-01T12:00:00+01:00", 7.10, 60.05, 600),
		},
	}

	out := Optimize(input, 100)

	require.Len(t, out.Positions, 2)
	assert.Equal(t, Merge(input.Positions[:4]), out.Positions[0])
	assert.InDelta(t, 150, out.Positions[0].Distance, 1e-9)
	assert.Equal(t, input.Positions[4], out.Positions[1])
	assert.InDelta(t, 750, totalDistance(input.Positions), 1e-9)
	assert.InDelta(t, 750, totalDistance(out.Positions), 1e-9)
	assert.Len(t, input.Positions, 5, "input must not change")
}

func TestOptimizePreservesDistance(t *testing.T) {
	for _, threshold := range []float64{0, 50, 100, 1000, 1e12} {
		for _, tr := range sampleTracks() {
			out := Optimize(tr, threshold)
			assert.InDelta(t, totalDistance(tr.Positions), totalDistance(out.Positions), 1e-6,
				"threshold %v track %s", threshold, tr.ID)
			assert.Equal(t, distinctDays(tr.Positions), distinctDays(out.Positions))
		}
	}
}

func TestOptimizeZeroThresholdKeepsEveryPoint(t *testing.T) {
	tr := sampleTracks()[0]
	out := Optimize(tr, 0)
	assert.Equal(t, tr.Positions, out.Positions)
}

func TestOptimizeHugeThresholdLeavesOnePointPerDay(t *testing.T) {
	tr := sampleTracks()[0]
	out := Optimize(tr, 1e12)
	assert.Len(t, out.Positions, distinctDays(tr.Positions))
}

func TestOptimizeSplitsRunAtMidnight(t *testing.T) {
	input := track.AnimalTrack{Positions: []track.TrackPoint{
		pointAt("2023-05-01T22:00:00+01:00", 7.000, 60.0, 0),
		pointAt("2023-05-01T23:00:00+01:00", 7.001, 60.0, 10),
		pointAt("2023-05-02T00:00:00+01:00", 7.002, 60.0, 10),
		pointAt("2023-05-02T01:00:00+01:00", 7.003, 60.0, 10),
	}}

	out := Optimize(input, 100)

	require.Len(t, out.Positions, 2)
	assert.Equal(t, "2023-05-01T22:00:00+01:00", out.Positions[0].Date)
	assert.Equal(t, "2023-05-02T00:00:00+01:00", out.Positions[1].Date)
	assert.InDelta(t, 10, out.Positions[0].Distance, 1e-9)
	assert.InDelta(t, 20, out.Positions[1].Distance, 1e-9)
}

func TestOptimizeEmptyTrack(t *testing.T) {
	out := Optimize(track.AnimalTrack{ID: "x", Name: "n"}, 100)
	assert.Equal(t, "x", out.ID)
	assert.Empty(t, out.Positions)
}

func TestOptimizeAll(t *testing.T) {
	tracks := sampleTracks()
	out := OptimizeAll(tracks, 100)
	require.Len(t, out, len(tracks))
	for i := range tracks {
		assert.Equal(t, tracks[i].ID, out[i].ID)
	}
}
