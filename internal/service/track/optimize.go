// internal/service/track/optimize.go

package track

import (
	"villrein/internal/domain/track"
)

// DefaultMinDistance is the threshold used for the full-detail artifact
const DefaultMinDistance = 100.0

// Optimize collapses runs of low-movement points.
//
// Each calendar day is walked on its own. Points that moved less than
// minDistance since their predecessor collect in a pending group; a point
// at or above the threshold flushes the group as one merged point and is
// then kept as is. The day's leftover group is flushed at the end, so a
// stationary run across midnight yields two merged points.
func Optimize(t track.AnimalTrack, minDistance float64) track.AnimalTrack {
	var optimized []track.TrackPoint

	for _, day := range Bucket(t.Positions, track.Day) {
		var pending []track.TrackPoint
		for _, p := range day.Positions {
			if p.Distance < minDistance {
				pending = append(pending, p)
				continue
			}
			if len(pending) > 0 {
				optimized = append(optimized, Merge(pending))
				pending = nil
			}
			optimized = append(optimized, p)
		}
		if len(pending) > 0 {
			optimized = append(optimized, Merge(pending))
		}
	}

	t.Positions = optimized
	return t
}

// OptimizeAll applies Optimize to every track
func OptimizeAll(tracks []track.AnimalTrack, minDistance float64) []track.AnimalTrack {
	optimized := make([]track.AnimalTrack, len(tracks))
	for i, t := range tracks {
		optimized[i] = Optimize(t, minDistance)
	}
	return optimized
}
