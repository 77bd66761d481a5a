package services

import (
	"context"
	"testing"
	"time"

	"civicfix-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Walks a complaint through its whole lifecycle: geofence routing, fallback
// classification, scoring, community votes, ageing, escalation and
// resolution.
func TestComplaintLifecycle(t *testing.T) {
	idx := testIndex(t)
	pipeline := NewClassificationPipeline(nil, time.Second, nil) // AI disabled

	now := time.Now()

	// A citizen reports a pothole inside Ward 3.
	ward, err := idx.ResolveWard(5, 25)
	require.NoError(t, err)
	require.Equal(t, "Ward 3", ward.Name)

	description := "Large pothole causing danger on main road"
	complaint := &models.Complaint{
		Description: description,
		Location:    models.GeoPoint{Lat: 5, Lng: 25},
		WardID:      ward.ID,
		AICategory:  models.CategoryOther,
		AISeverity:  models.SeverityMedium,
		Status:      models.StatusSubmitted,
		CreatedAt:   now,
	}

	// Classification lands asynchronously after creation.
	result := pipeline.Classify(context.Background(), description, complaint.ImageURL)
	assert.Equal(t, models.CategoryRoad, result.Category)
	assert.Equal(t, models.SeverityHigh, result.Severity)
	assert.Equal(t, models.SourceFallback, result.Source)

	complaint.AICategory = result.Category
	complaint.AISeverity = result.Severity
	complaint.AIKeywords = result.Keywords
	complaint.AIStatus = result.Source

	// Fresh, unvoted: severity is the only contribution.
	complaint.PriorityScore = CalculatePriority(complaint, now)
	assert.Equal(t, 50, complaint.PriorityScore)

	// Ten upvotes: the support term clamps at +30, not +50.
	complaint.UpvoteCount = 10
	complaint.PriorityScore = CalculatePriority(complaint, now)
	assert.Equal(t, 80, complaint.PriorityScore)

	// 30 hours pending: +floor(30/12)*5 = +10.
	later := now.Add(30 * time.Hour)
	complaint.PriorityScore = CalculatePriority(complaint, later)
	assert.Equal(t, 90, complaint.PriorityScore)
	assert.True(t, IsEscalated(complaint, later, 1, 80))

	// Resolution forces the score to zero and drops the complaint out of
	// the escalation view.
	complaint.Status = models.StatusResolved
	complaint.PriorityScore = CalculatePriority(complaint, later)
	assert.Equal(t, 0, complaint.PriorityScore)
	assert.False(t, IsEscalated(complaint, later, 1, 80))
}
