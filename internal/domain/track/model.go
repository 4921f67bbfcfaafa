// internal/domain/track/model.go

package track

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Granularity selects how positions are bucketed in time
type Granularity string

const (
	Day  Granularity = "day"
	Week Granularity = "week"
)

// Details identifies the detail level of a served or stored track view
type Details string

const (
	DetailsFull Details = "full"
	DetailsDay  Details = "day"
	DetailsWeek Details = "week"
)

// Granularity returns the bucketing granularity of a grouped detail level.
// The full level has none.
func (d Details) Granularity() (Granularity, bool) {
	switch d {
	case DetailsDay:
		return Day, true
	case DetailsWeek:
		return Week, true
	}
	return "", false
}

// Valid reports whether d is a known detail level
func (d Details) Valid() bool {
	return d == DetailsFull || d == DetailsDay || d == DetailsWeek
}

// TrackPoint is a single position of an animal with the distance travelled
// since the previous position of the same track.
type TrackPoint struct {
	Longitude float64
	Latitude  float64
	Timestamp time.Time
	// Date is the timestamp as delivered by the source. Day keys and
	// serialized output use it so the original zone notation survives.
	Date     string
	Distance float64 // meters
}

type trackPointJSON struct {
	Point [2]float64 `json:"point"`
	Date  string     `json:"date"`
	Dist  float64    `json:"dist"`
}

// MarshalJSON encodes the point as {"point":[lon,lat],"date":...,"dist":...}
func (p TrackPoint) MarshalJSON() ([]byte, error) {
	date := p.Date
	if date == "" && !p.Timestamp.IsZero() {
		date = p.Timestamp.Format(time.RFC3339)
	}
	return json.Marshal(trackPointJSON{
		Point: [2]float64{p.Longitude, p.Latitude},
		Date:  date,
		Dist:  p.Distance,
	})
}

// UnmarshalJSON decodes the wire shape written by MarshalJSON
func (p *TrackPoint) UnmarshalJSON(data []byte) error {
	var raw trackPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var ts time.Time
	if raw.Date != "" {
		parsed, err := ParseDate(raw.Date)
		if err != nil {
			return err
		}
		ts = parsed
	}
	*p = TrackPoint{
		Longitude: raw.Point[0],
		Latitude:  raw.Point[1],
		Timestamp: ts,
		Date:      raw.Date,
		Distance:  raw.Dist,
	}
	return nil
}

// DayKey returns the calendar day of the point in its own time zone
func (p TrackPoint) DayKey() string {
	if day, _, ok := strings.Cut(p.Date, "T"); ok && day != "" {
		return day
	}
	return p.Timestamp.Format("2006-01-02")
}

// WeekKey returns the ISO-8601 week number of the point. The year is not
// part of the key.
func (p TrackPoint) WeekKey() string {
	_, week := p.Timestamp.ISOWeek()
	return fmt.Sprintf("%d", week)
}

// AnimalTrack is the ordered position history of one individual
type AnimalTrack struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	AgeString string       `json:"ageString"`
	Positions []TrackPoint `json:"positions"`
}

// DateBucket groups the positions sharing a day or week key
type DateBucket struct {
	Key       string
	Day       time.Time
	Positions []TrackPoint
	Distance  float64 // line length over Positions only
}

// Summary describes a track through its day buckets
type Summary struct {
	PointCount     int     `json:"positions"`
	TotalDistance  float64 `json:"distance"`
	MinDayDistance float64 `json:"min"`
	AvgDayDistance float64 `json:"avg"`
	MaxDayDistance float64 `json:"max"`
	DayCount       int     `json:"days"`
}

// TrackStats pairs a track's identity with its summary
type TrackStats struct {
	Name      string  `json:"name"`
	AgeString string  `json:"ageString"`
	Summary   Summary `json:"summary"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a source timestamp. Timestamps without an offset are
// read as UTC, which keeps their wall-clock day.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
