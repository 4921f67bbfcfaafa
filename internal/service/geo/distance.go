// internal/service/geo/distance.go

// Package geo computes spherical-earth distances between positions.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean Earth radius
const EarthRadiusMeters = 6371008.8

// Distance returns the great-circle distance in meters between two
// [longitude, latitude] points given in degrees.
func Distance(a, b orb.Point) float64 {
	// Haversine formula
	lat1 := a.Lat() * math.Pi / 180.0
	lat2 := b.Lat() * math.Pi / 180.0
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180.0

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LineLength sums the distances between consecutive points. Fewer than two
// points have no length.
func LineLength(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(line); i++ {
		total += Distance(line[i-1], line[i])
	}
	return total
}
