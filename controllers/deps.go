package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Shared service singletons, wired once from main before routes are mounted.
var (
	geoIndex   *services.GeoIndex
	classifier *services.ClassificationPipeline
	logger     = zap.NewNop()
)

// Init injects the geofence index, classification pipeline and logger used
// by the complaint handlers.
func Init(gi *services.GeoIndex, cp *services.ClassificationPipeline, lg *zap.Logger) {
	geoIndex = gi
	classifier = cp
	if lg != nil {
		logger = lg
	}
}

// statusFromError maps the services error taxonomy onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrWardNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateVote):
		return http.StatusConflict
	case errors.Is(err, services.ErrVoteNotFound):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// recomputePriority reloads the complaint, derives a fresh score from its
// stored fields and persists it. The score is a derived cache: last writer
// wins under concurrent mutations, and any staleness is repaired by the next
// recompute or the nightly sweep.
func recomputePriority(ctx context.Context, complaintID primitive.ObjectID) (*models.Complaint, error) {
	complaintCollection := config.GetCollection("complaints")

	var complaint models.Complaint
	err := complaintCollection.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrNotFound
		}
		return nil, err
	}

	score := services.CalculatePriority(&complaint, time.Now())
	_, err = complaintCollection.UpdateOne(ctx,
		bson.M{"_id": complaintID},
		bson.M{"$set": bson.M{
			"priorityScore": score,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}

	complaint.PriorityScore = score
	return &complaint, nil
}

// currentUserID extracts the authenticated user's ObjectID from the gin
// context set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}

	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return objID, true
}
