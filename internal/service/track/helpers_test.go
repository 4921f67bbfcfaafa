package track

import (
	"fmt"
	"time"

	"villrein/internal/domain/track"
)

var oslo = time.FixedZone("CET", 3600)

// rawTrack builds n raw positions two hours apart starting at start, with
// an irregular walk so that some steps are short and some long.
func rawTrack(start time.Time, n int) []track.RawPosition {
	positions := make([]track.RawPosition, n)
	lon, lat := 7.5, 60.2
	for i := 0; i < n; i++ {
		step := 0.0002
		if i%4 == 0 {
			step = 0.01
		}
		lon += step
		lat += step / 2
		positions[i] = track.RawPosition{
			ID:        track.PositionID(fmt.Sprintf("%d", i)),
			Longitude: lon,
			Latitude:  lat,
			DateTime:  start.Add(time.Duration(i) * 2 * time.Hour).Format("2006-01-02T15:04:05-07:00"),
		}
	}
	return positions
}

func sampleTracks() []track.AnimalTrack {
	start := time.Date(2023, 3, 1, 0, 30, 0, 0, oslo)
	return Collect([]track.RawDocument{{
		VM: []track.RawIndividual{
			{ID: "a", Name: "Rein 1", AgeString: "Voksen ", Positions: rawTrack(start, 60)},
			{ID: "b", Name: "Rein 2", AgeString: "Kalv", Positions: rawTrack(start.Add(30*time.Hour), 25)},
		},
	}})
}

func totalDistance(points []track.TrackPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Distance
	}
	return sum
}

func distinctDays(points []track.TrackPoint) int {
	days := make(map[string]struct{})
	for _, p := range points {
		days[p.DayKey()] = struct{}{}
	}
	return len(days)
}

func pointAt(date string, lon, lat, dist float64) track.TrackPoint {
	ts, err := track.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return track.TrackPoint{Longitude: lon, Latitude: lat, Timestamp: ts, Date: date, Distance: dist}
}
