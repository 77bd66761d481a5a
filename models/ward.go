package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WardBoundary is a GeoJSON MultiPolygon. Coordinates follow the GeoJSON
// convention of [lng, lat] and the nesting polygons -> rings -> points.
// Polygon boundaries are wrapped into a single-element MultiPolygon at import
// time so every stored ward carries the same shape.
type WardBoundary struct {
	Type        string          `bson:"type" json:"type"`
	Coordinates [][][][]float64 `bson:"coordinates" json:"coordinates"`
}

// Ward is a municipal administrative boundary to which complaints are routed.
// Geometry is immutable after the administrative import.
type Ward struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name     string               `bson:"name" json:"name"`
	City     string               `bson:"city" json:"city"`
	Boundary WardBoundary         `bson:"boundary" json:"boundary"`
	Admins   []primitive.ObjectID `bson:"admins,omitempty" json:"admins,omitempty"`
}

// EnsureWardIndex creates the 2dsphere index used by map queries.
func EnsureWardIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "boundary", Value: "2dsphere"}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
