// internal/service/track/collect.go

package track

import (
	"strings"

	"github.com/paulmach/orb"

	"villrein/internal/domain/track"
	"villrein/internal/service/geo"
)

// Collect turns raw documents into one track per individual.
//
// Every individual slice is annotated with distances on its own; slices for
// an id that was already seen are appended to that track in document order
// without deduplication. Identity fields come from the first slice.
func Collect(docs []track.RawDocument) []track.AnimalTrack {
	var tracks []track.AnimalTrack
	index := make(map[string]int)

	for _, doc := range docs {
		for _, ind := range doc.VM {
			positions := annotate(ind.Positions)
			if i, ok := index[ind.ID]; ok {
				tracks[i].Positions = append(tracks[i].Positions, positions...)
				continue
			}
			index[ind.ID] = len(tracks)
			tracks = append(tracks, track.AnimalTrack{
				ID:        ind.ID,
				Name:      ind.Name,
				AgeString: strings.TrimSpace(ind.AgeString),
				Positions: positions,
			})
		}
	}
	return tracks
}

// annotate converts raw positions and sets each point's distance from its
// predecessor. An unparseable dateTime leaves Timestamp zero; the raw
// string still drives the day key.
func annotate(raw []track.RawPosition) []track.TrackPoint {
	positions := make([]track.TrackPoint, len(raw))
	for i, r := range raw {
		ts, _ := track.ParseDate(r.DateTime)
		positions[i] = track.TrackPoint{
			Longitude: r.Longitude,
			Latitude:  r.Latitude,
			Timestamp: ts,
			Date:      r.DateTime,
		}
		if i > 0 {
			prev := raw[i-1]
			positions[i].Distance = geo.Distance(
				orb.Point{prev.Longitude, prev.Latitude},
				orb.Point{r.Longitude, r.Latitude},
			)
		}
	}
	return positions
}
