package clustering

import (
	"math"

	"github.com/UnknownOlympus/pinmap/internal/models"
)

const (
	earthRadiusKm = 6371.0
	// kmPerDegree approximates one degree of latitude. Used only to size grid
	// cells; actual clustering decisions use great-circle distance.
	kmPerDegree = 111.0
)

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(a, b models.Coordinates) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
