package controllers

import (
	"context"
	"net/http"
	"time"

	"civicfix-be/config"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func voteStore() *services.MongoVoteStore {
	return services.NewMongoVoteStore(
		config.GetCollection("votes"),
		config.GetCollection("complaints"),
	)
}

// UpvoteComplaint records a citizen's upvote. Duplicate handling and the
// counter reset live in services.CastVote.
func UpvoteComplaint(c *gin.Context) {
	idParam := c.Param("id")
	complaintID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	userObjID, ok := currentUserID(c)
	if !ok {
		return
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := complaintCollection.CountDocuments(ctx, bson.M{"_id": complaintID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaint"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}

	if _, err := services.CastVote(ctx, voteStore(), complaintID, userObjID, time.Now()); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	complaint, err := recomputePriority(ctx, complaintID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": "Failed to recompute priority"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Complaint upvoted successfully",
		"votes":         complaint.UpvoteCount,
		"priorityScore": complaint.PriorityScore,
		"userHasVoted":  true,
	})
}

// RemoveUpvote deletes the citizen's vote via services.RetractVote, which
// rejects removal when no vote exists.
func RemoveUpvote(c *gin.Context) {
	idParam := c.Param("id")
	complaintID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	userObjID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := services.RetractVote(ctx, voteStore(), complaintID, userObjID); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	complaint, err := recomputePriority(ctx, complaintID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": "Failed to recompute priority"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Upvote removed successfully",
		"votes":         complaint.UpvoteCount,
		"priorityScore": complaint.PriorityScore,
		"userHasVoted":  false,
	})
}
