package services

import (
	"math"

	"civicfix-be/models"
)

const (
	earthRadiusMeters = 6371000

	// DefaultNearbyRadiusMeters bounds the "complaints near a point" query.
	DefaultNearbyRadiusMeters = 200
	// DuplicateRadiusMeters is the clustering distance for same-category
	// duplicate detection.
	DuplicateRadiusMeters = 100
)

// DistanceMeters returns the haversine great-circle distance between two
// coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(x float64) float64 { return x * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLng/2), 2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FilterNearby returns the complaints within radiusMeters of the point.
func FilterNearby(complaints []models.Complaint, lat, lng, radiusMeters float64) []models.Complaint {
	nearby := make([]models.Complaint, 0)
	for _, c := range complaints {
		if DistanceMeters(lat, lng, c.Location.Lat, c.Location.Lng) <= radiusMeters {
			nearby = append(nearby, c)
		}
	}
	return nearby
}

// HasNearbyDuplicate reports whether any unresolved complaint of the same
// category sits within DuplicateRadiusMeters of the point. Used as a
// creation-time warning, never a rejection.
func HasNearbyDuplicate(complaints []models.Complaint, lat, lng float64, category models.ComplaintCategory) bool {
	for _, c := range complaints {
		if c.Status == models.StatusResolved || c.AICategory != category {
			continue
		}
		if DistanceMeters(lat, lng, c.Location.Lat, c.Location.Lng) <= DuplicateRadiusMeters {
			return true
		}
	}
	return false
}
