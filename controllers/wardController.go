package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListWards returns all wards
func ListWards(c *gin.Context) {
	wardCollection := config.GetCollection("wards")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := wardCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wards"})
		return
	}
	defer cursor.Close(ctx)

	var wards []models.Ward
	if err := cursor.All(ctx, &wards); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode wards"})
		return
	}

	c.JSON(http.StatusOK, wards)
}

// GetWard returns a ward by its ID
func GetWard(c *gin.Context) {
	idParam := c.Param("id")
	wardID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
		return
	}

	wardCollection := config.GetCollection("wards")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ward models.Ward
	err = wardCollection.FindOne(ctx, bson.M{"_id": wardID}).Decode(&ward)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ward not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ward"})
		}
		return
	}

	c.JSON(http.StatusOK, ward)
}

// wardImportInput carries one ward of an administrative boundary import.
// The boundary accepts GeoJSON Polygon or MultiPolygon; polygons are
// normalized to a single-element MultiPolygon before storage.
type wardImportInput struct {
	Name     string `json:"name" binding:"required"`
	City     string `json:"city" binding:"required"`
	Boundary struct {
		Type        string          `json:"type" binding:"required"`
		Coordinates json.RawMessage `json:"coordinates" binding:"required"`
	} `json:"boundary" binding:"required"`
}

// ImportWards seeds ward boundaries from a GeoJSON payload and rebuilds the
// in-memory geofence index so new wards resolve immediately.
func ImportWards(c *gin.Context) {
	var input struct {
		Wards []wardImportInput `json:"wards" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs := make([]interface{}, 0, len(input.Wards))
	for _, w := range input.Wards {
		boundary, err := normalizeBoundary(w.Boundary.Type, w.Boundary.Coordinates)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid boundary for ward " + w.Name + ": " + err.Error()})
			return
		}

		docs = append(docs, models.Ward{
			ID:       primitive.NewObjectID(),
			Name:     w.Name,
			City:     w.City,
			Boundary: *boundary,
		})
	}

	wardCollection := config.GetCollection("wards")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := wardCollection.InsertMany(ctx, docs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import wards"})
		return
	}

	if err := geoIndex.Reload(ctx, wardCollection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wards imported but geofence reload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Wards imported successfully",
		"imported": len(docs),
		"indexed":  geoIndex.WardCount(),
	})
}

// normalizeBoundary converts a GeoJSON Polygon or MultiPolygon geometry
// into the stored MultiPolygon shape.
func normalizeBoundary(geomType string, coordinates json.RawMessage) (*models.WardBoundary, error) {
	switch geomType {
	case "Polygon":
		var polygon [][][]float64
		if err := json.Unmarshal(coordinates, &polygon); err != nil {
			return nil, err
		}
		return &models.WardBoundary{
			Type:        "MultiPolygon",
			Coordinates: [][][][]float64{polygon},
		}, nil
	case "MultiPolygon":
		var multi [][][][]float64
		if err := json.Unmarshal(coordinates, &multi); err != nil {
			return nil, err
		}
		return &models.WardBoundary{
			Type:        "MultiPolygon",
			Coordinates: multi,
		}, nil
	default:
		return nil, errUnsupportedGeometry(geomType)
	}
}

type errUnsupportedGeometry string

func (e errUnsupportedGeometry) Error() string {
	return "unsupported geometry type " + string(e)
}
