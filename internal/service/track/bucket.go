// internal/service/track/bucket.go

package track

import (
	"github.com/paulmach/orb"

	"villrein/internal/domain/track"
	"villrein/internal/service/geo"
)

// Bucket partitions points into day or ISO-week buckets.
//
// Buckets are kept in first-seen order. A point joins the existing bucket
// with its key even when that bucket is not the most recent one, so a day
// that reappears later in the sequence is folded back into its first
// bucket. Week keys carry no year, so week 1 of the next year lands in the
// bucket of week 1 of this year.
func Bucket(points []track.TrackPoint, granularity track.Granularity) []track.DateBucket {
	var buckets []track.DateBucket
	index := make(map[string]int)

	for _, p := range points {
		key := bucketKey(p, granularity)
		if i, ok := index[key]; ok {
			buckets[i].Positions = append(buckets[i].Positions, p)
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, track.DateBucket{
			Key:       key,
			Day:       p.Timestamp,
			Positions: []track.TrackPoint{p},
		})
	}

	for i := range buckets {
		buckets[i].Distance = geo.LineLength(lineOf(buckets[i].Positions))
	}
	return buckets
}

func bucketKey(p track.TrackPoint, granularity track.Granularity) string {
	if granularity == track.Week {
		return p.WeekKey()
	}
	return p.DayKey()
}

func lineOf(points []track.TrackPoint) orb.LineString {
	line := make(orb.LineString, len(points))
	for i, p := range points {
		line[i] = orb.Point{p.Longitude, p.Latitude}
	}
	return line
}
