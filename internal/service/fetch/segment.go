// internal/service/fetch/segment.go

package fetch

import (
	"time"

	"villrein/internal/domain/fetch"
)

// Segment bisects every range depth times, producing 2^depth adjacent
// equal-width ranges per input range in chronological order. Depth zero
// (or below) returns ranges unchanged.
func Segment(ranges []fetch.DateRange, depth int) []fetch.DateRange {
	if depth <= 0 {
		return ranges
	}

	split := make([]fetch.DateRange, 0, len(ranges)*2)
	for _, r := range ranges {
		mid := r.Start.Add(r.Duration() / 2)
		split = append(split,
			fetch.DateRange{Start: r.Start, End: mid},
			fetch.DateRange{Start: mid, End: r.End},
		)
	}
	return Segment(split, depth-1)
}

// SegmentsForDepth returns how many ranges a single range splits into
func SegmentsForDepth(depth int) int {
	if depth <= 0 {
		return 1
	}
	return 1 << depth
}

// YearRange returns [Jan 1 of year, Jan 1 of year+1) in loc, with both
// ends clipped to now.
func YearRange(year int, now time.Time, loc *time.Location) fetch.DateRange {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
	if end.After(now) {
		end = now
	}
	if start.After(now) {
		start = now
	}
	return fetch.DateRange{Start: start, End: end}
}
