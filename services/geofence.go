package services

import (
	"context"
	"math"
	"sort"
	"sync"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GeoIndex holds an in-memory snapshot of ward boundaries and resolves a
// coordinate to the ward containing it. Wards are tested in ascending ID
// order so overlapping boundaries deterministically resolve to the lowest
// ward ID. The snapshot is rebuilt via Reload whenever wards change.
type GeoIndex struct {
	mu    sync.RWMutex
	wards []models.Ward
}

func NewGeoIndex() *GeoIndex {
	return &GeoIndex{}
}

// SetWards replaces the snapshot. Exposed for tests and seeding; Reload is
// the production path.
func (g *GeoIndex) SetWards(wards []models.Ward) {
	sorted := make([]models.Ward, len(wards))
	copy(sorted, wards)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Hex() < sorted[j].ID.Hex()
	})

	g.mu.Lock()
	g.wards = sorted
	g.mu.Unlock()
}

// Reload rebuilds the snapshot from the ward collection.
func (g *GeoIndex) Reload(ctx context.Context, collection *mongo.Collection) error {
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var wards []models.Ward
	if err := cursor.All(ctx, &wards); err != nil {
		return err
	}

	g.SetWards(wards)
	return nil
}

// WardCount returns the number of wards in the current snapshot.
func (g *GeoIndex) WardCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.wards)
}

// ValidateLocation rejects non-finite or out-of-range coordinates before any
// lookup or write happens.
func ValidateLocation(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return ErrInvalidLocation
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// ResolveWard maps a coordinate to the ward whose boundary contains it.
// Returns ErrInvalidLocation for malformed input and ErrWardNotFound when no
// boundary contains the point; complaint creation fails closed on the latter.
func (g *GeoIndex) ResolveWard(lat, lng float64) (*models.Ward, error) {
	if err := ValidateLocation(lat, lng); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for i := range g.wards {
		if boundaryContains(&g.wards[i].Boundary, lat, lng) {
			ward := g.wards[i]
			return &ward, nil
		}
	}

	return nil, ErrWardNotFound
}

// boundaryContains tests the point against each polygon of the boundary.
// A point inside the outer ring but also inside a hole is outside.
func boundaryContains(b *models.WardBoundary, lat, lng float64) bool {
	for _, polygon := range b.Coordinates {
		if len(polygon) == 0 {
			continue
		}
		if !ringContains(polygon[0], lat, lng) {
			continue
		}
		inHole := false
		for _, hole := range polygon[1:] {
			if ringContains(hole, lat, lng) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// ringContains is a ray-casting point-in-ring test over GeoJSON [lng, lat]
// points. A point exactly on an edge or vertex counts as inside.
func ringContains(ring [][]float64, lat, lng float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if onSegment(xi, yi, xj, yj, lng, lat) {
			return true
		}

		intersects := (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi)+xi
		if intersects {
			inside = !inside
		}
	}

	return inside
}

// onSegment reports whether (px,py) lies on the segment (x1,y1)-(x2,y2).
func onSegment(x1, y1, x2, y2, px, py float64) bool {
	const eps = 1e-12

	cross := (x2-x1)*(py-y1) - (y2-y1)*(px-x1)
	if math.Abs(cross) > eps {
		return false
	}
	if px < math.Min(x1, x2)-eps || px > math.Max(x1, x2)+eps {
		return false
	}
	if py < math.Min(y1, y2)-eps || py > math.Max(y1, y2)+eps {
		return false
	}
	return true
}
