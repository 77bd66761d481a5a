package services

import (
	"testing"

	"civicfix-be/models"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	// Same point
	assert.InDelta(t, 0, DistanceMeters(12.97, 77.59, 12.97, 77.59), 0.001)

	// One degree of latitude is about 111km
	assert.InDelta(t, 111195, DistanceMeters(0, 0, 1, 0), 200)

	// Symmetry
	d1 := DistanceMeters(12.97, 77.59, 12.98, 77.60)
	d2 := DistanceMeters(12.98, 77.60, 12.97, 77.59)
	assert.InDelta(t, d1, d2, 0.0001)
}

func complaintAt(lat, lng float64, category models.ComplaintCategory, status models.ComplaintStatus) models.Complaint {
	return models.Complaint{
		Location:   models.GeoPoint{Lat: lat, Lng: lng},
		AICategory: category,
		Status:     status,
	}
}

func TestFilterNearby(t *testing.T) {
	complaints := []models.Complaint{
		complaintAt(12.9700, 77.5900, models.CategoryRoad, models.StatusSubmitted),
		complaintAt(12.9705, 77.5900, models.CategoryRoad, models.StatusSubmitted), // ~55m north
		complaintAt(12.9800, 77.5900, models.CategoryRoad, models.StatusSubmitted), // ~1.1km north
	}

	nearby := FilterNearby(complaints, 12.9700, 77.5900, 200)
	assert.Len(t, nearby, 2)

	nearby = FilterNearby(complaints, 12.9700, 77.5900, 2000)
	assert.Len(t, nearby, 3)

	nearby = FilterNearby(nil, 12.9700, 77.5900, 200)
	assert.Empty(t, nearby)
}

func TestHasNearbyDuplicate(t *testing.T) {
	complaints := []models.Complaint{
		complaintAt(12.9700, 77.5900, models.CategoryRoad, models.StatusSubmitted),
		complaintAt(12.9700, 77.5910, models.CategoryGarbage, models.StatusSubmitted),
		complaintAt(12.9701, 77.5900, models.CategoryDrainage, models.StatusResolved),
	}

	// Same category within 100m
	assert.True(t, HasNearbyDuplicate(complaints, 12.9701, 77.5900, models.CategoryRoad))

	// Different category nearby is not a duplicate
	assert.False(t, HasNearbyDuplicate(complaints, 12.9701, 77.5900, models.CategoryLighting))

	// Resolved complaints never count
	assert.False(t, HasNearbyDuplicate(complaints, 12.9701, 77.5900, models.CategoryDrainage))

	// Same category but too far away
	assert.False(t, HasNearbyDuplicate(complaints, 12.9900, 77.5900, models.CategoryRoad))
}
