// internal/service/track/group.go

package track

import (
	"villrein/internal/domain/track"
)

// GroupDays replaces every track's positions with one merged point per
// bucket, in bucket encounter order.
func GroupDays(tracks []track.AnimalTrack, granularity track.Granularity) []track.AnimalTrack {
	grouped := make([]track.AnimalTrack, len(tracks))
	for i, t := range tracks {
		buckets := Bucket(t.Positions, granularity)
		positions := make([]track.TrackPoint, len(buckets))
		for j, b := range buckets {
			positions[j] = Merge(b.Positions)
		}
		t.Positions = positions
		grouped[i] = t
	}
	return grouped
}
