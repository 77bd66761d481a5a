package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// GetAuthorityAnalytics returns analytical data about the authority's ward
func GetAuthorityAnalytics(c *gin.Context) {
	wardID, ok := authorityWardID(c)
	if !ok {
		return
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := complaintCollection.Find(ctx, bson.M{"wardId": wardID})
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

	// Category breakdown
	categoryMap := map[models.ComplaintCategory]int{}
	for _, complaint := range complaints {
		categoryMap[complaint.AICategory]++
	}

	// Priority distribution
	priority := gin.H{"high": 0, "medium": 0, "low": 0}
	high, medium, low := 0, 0, 0
	for _, complaint := range complaints {
		switch {
		case complaint.PriorityScore >= 70:
			high++
		case complaint.PriorityScore >= 40:
			medium++
		default:
			low++
		}
	}
	priority["high"], priority["medium"], priority["low"] = high, medium, low

	// Status breakdown
	statusMap := map[models.ComplaintStatus]int{
		models.StatusSubmitted:    0,
		models.StatusAcknowledged: 0,
		models.StatusInProgress:   0,
		models.StatusResolved:     0,
	}
	for _, complaint := range complaints {
		statusMap[complaint.Status]++
	}

	// Average resolution time in days
	resolvedCount := 0
	totalDays := 0.0
	for _, complaint := range complaints {
		if complaint.Status != models.StatusResolved {
			continue
		}
		resolvedCount++
		end := complaint.UpdatedAt
		if complaint.ResolvedAt != nil {
			end = *complaint.ResolvedAt
		}
		totalDays += end.Sub(complaint.CreatedAt).Hours() / 24
	}
	avgResolutionTime := 0.0
	if resolvedCount > 0 {
		avgResolutionTime = totalDays / float64(resolvedCount)
	}

	// Weekly trend over the last 4 weeks
	var trend []gin.H
	now := time.Now()
	for i := 3; i >= 0; i-- {
		start := now.AddDate(0, 0, -(i+1)*7)
		end := now.AddDate(0, 0, -i*7)

		reported := 0
		resolved := 0
		for _, complaint := range complaints {
			if complaint.CreatedAt.Before(start) || !complaint.CreatedAt.Before(end) {
				continue
			}
			reported++
			if complaint.Status == models.StatusResolved {
				resolved++
			}
		}

		trend = append(trend, gin.H{
			"label":    fmt.Sprintf("Week %d", 4-i),
			"reported": reported,
			"resolved": resolved,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"categoryMap":       categoryMap,
		"priority":          priority,
		"status":            statusMap,
		"avgResolutionTime": fmt.Sprintf("%.1f", avgResolutionTime),
		"trend":             trend,
	})
}
