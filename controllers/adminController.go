package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// authorityWardID extracts the authority's ward from the token claims.
func authorityWardID(c *gin.Context) (primitive.ObjectID, bool) {
	wardVal, exists := c.Get("ward_id")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No ward assigned to this account"})
		return primitive.NilObjectID, false
	}

	wardID, err := primitive.ObjectIDFromHex(wardVal.(string))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid ward assignment"})
		return primitive.NilObjectID, false
	}
	return wardID, true
}

// GetWardComplaints lists the complaints of the authority's own ward,
// ordered by priority score.
func GetWardComplaints(c *gin.Context) {
	wardID, ok := authorityWardID(c)
	if !ok {
		return
	}

	filter := bson.M{"wardId": wardID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if category := c.Query("category"); category != "" {
		filter["aiCategory"] = category
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "priorityScore", Value: -1}})
	cursor, err := complaintCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ward complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode ward complaints"})
		return
	}

	c.JSON(http.StatusOK, complaints)
}

// UpdateComplaintStatus moves a complaint through the workflow. Only an
// authority of the complaint's ward may update it; resolving stamps
// resolvedAt and forces the score to 0 via the recompute.
func UpdateComplaintStatus(c *gin.Context) {
	idParam := c.Param("id")
	complaintID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	wardID, ok := authorityWardID(c)
	if !ok {
		return
	}

	var input struct {
		Status           string  `json:"status" binding:"required"`
		Remarks          *string `json:"remarks,omitempty"`
		AfterFixImageURL *string `json:"afterFixImageUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	newStatus := models.ComplaintStatus(input.Status)

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var complaint models.Complaint
	err = complaintCollection.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaint"})
		}
		return
	}

	if complaint.WardID != wardID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this ward"})
		return
	}

	// Resolved is terminal: remarks and the after-fix photo may still be
	// attached, but the status itself never regresses.
	if complaint.Status == models.StatusResolved && newStatus != models.StatusResolved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resolved complaints cannot be reopened"})
		return
	}

	update := bson.M{
		"status":    newStatus,
		"updatedAt": time.Now(),
	}
	if input.Remarks != nil {
		update["authorityRemarks"] = *input.Remarks
	}
	if input.AfterFixImageURL != nil {
		update["afterFixImageUrl"] = *input.AfterFixImageURL
	}
	if newStatus == models.StatusResolved && complaint.ResolvedAt == nil {
		update["resolvedAt"] = time.Now()
	}

	_, err = complaintCollection.UpdateOne(ctx, bson.M{"_id": complaintID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint status"})
		return
	}

	updated, err := recomputePriority(ctx, complaintID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": "Failed to recompute priority"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Complaint status updated successfully",
		"complaint": updated,
	})
}

// GetEscalations returns unresolved complaints whose score and age exceed
// the configured thresholds, ordered by score descending. Read-only derived
// view over current priorityScore, never a stored flag.
func GetEscalations(c *gin.Context) {
	days := config.EnvInt("ESCALATION_WINDOW_DAYS", services.DefaultEscalationDays)
	if d, err := strconv.Atoi(c.Query("days")); err == nil && d >= 0 {
		days = d
	}

	threshold := config.EnvInt("ESCALATION_THRESHOLD", services.DefaultEscalationThreshold)
	if t, err := strconv.Atoi(c.Query("threshold")); err == nil && t >= 0 {
		threshold = t
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "priorityScore", Value: -1}})
	cursor, err := complaintCollection.Find(ctx, services.EscalationFilter(time.Now(), days, threshold), findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve escalations"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode escalations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"escalations": complaints,
		"days":        days,
		"threshold":   threshold,
	})
}
