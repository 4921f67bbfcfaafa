// internal/service/track/merge.go

package track

import (
	"github.com/paulmach/orb"

	"villrein/internal/domain/track"
)

// Merge reduces points to one representative point.
//
// The position is the center of the points' bounding box, not their mean.
// Timestamp and date come from the point at index (n-1)/2, so for an even
// count the earlier of the two middle points wins. The distance is the sum
// of all member distances, which keeps track totals unchanged.
func Merge(points []track.TrackPoint) track.TrackPoint {
	if len(points) == 0 {
		return track.TrackPoint{}
	}

	mp := make(orb.MultiPoint, len(points))
	var distance float64
	for i, p := range points {
		mp[i] = orb.Point{p.Longitude, p.Latitude}
		distance += p.Distance
	}
	center := mp.Bound().Center()

	merged := points[(len(points)-1)/2]
	merged.Longitude = center.Lon()
	merged.Latitude = center.Lat()
	merged.Distance = distance
	return merged
}
