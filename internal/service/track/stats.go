// internal/service/track/stats.go

package track

import (
	"fmt"

	"villrein/internal/domain/track"
	"villrein/internal/service/geo"
)

// Summarize computes point count, total distance and day distance spread
func Summarize(positions []track.TrackPoint) track.Summary {
	days := Bucket(positions, track.Day)
	summary := track.Summary{
		PointCount:    len(positions),
		TotalDistance: geo.LineLength(lineOf(positions)),
		DayCount:      len(days),
	}
	if len(days) == 0 {
		return summary
	}

	var total float64
	summary.MinDayDistance = days[0].Distance
	summary.MaxDayDistance = days[0].Distance
	for _, d := range days {
		total += d.Distance
		if d.Distance < summary.MinDayDistance {
			summary.MinDayDistance = d.Distance
		}
		if d.Distance > summary.MaxDayDistance {
			summary.MaxDayDistance = d.Distance
		}
	}
	summary.AvgDayDistance = total / float64(len(days))
	return summary
}

// FormatMeter renders meters as kilometers with two decimals
func FormatMeter(meters float64) string {
	return fmt.Sprintf("%.2fkm", meters/1000)
}
