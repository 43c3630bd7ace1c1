// Package geo implements great-circle distance between coordinates.
package geo

import (
	"math"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the haversine distance between a and b in kilometres.
// The result is symmetric and exactly zero for identical points.
func DistanceKm(a, b models.Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// float overshoot near antipodes and near-zero separations
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
