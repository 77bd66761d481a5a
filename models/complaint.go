package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintCategory enum
type ComplaintCategory string

const (
	CategoryGarbage  ComplaintCategory = "garbage"
	CategoryRoad     ComplaintCategory = "road"
	CategoryDrainage ComplaintCategory = "drainage"
	CategoryLighting ComplaintCategory = "lighting"
	CategoryOther    ComplaintCategory = "other"
)

// ComplaintSeverity enum
type ComplaintSeverity string

const (
	SeverityLow    ComplaintSeverity = "low"
	SeverityMedium ComplaintSeverity = "medium"
	SeverityHigh   ComplaintSeverity = "high"
)

// ComplaintStatus enum
type ComplaintStatus string

const (
	StatusSubmitted    ComplaintStatus = "submitted"
	StatusAcknowledged ComplaintStatus = "acknowledged"
	StatusInProgress   ComplaintStatus = "in_progress"
	StatusResolved     ComplaintStatus = "resolved"
)

// ClassificationSource records which path produced the current AI tags.
type ClassificationSource string

const (
	SourceAI       ClassificationSource = "ai"
	SourceFallback ClassificationSource = "fallback"
)

// PlaceholderImageURL is used when the evidence image upload failed.
const PlaceholderImageURL = "https://via.placeholder.com/800x450?text=Evidence+Image+Pending"

// GeoPoint is a raw lat/lng pair as submitted by the citizen.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Complaint represents a civic complaint reported by a citizen. aiCategory,
// aiSeverity and aiKeywords are placeholder defaults until classification
// completes; priorityScore is a derived cache recomputed on every mutation.
type Complaint struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ReportedBy       primitive.ObjectID   `bson:"reportedBy" json:"reportedBy"`
	Description      string               `bson:"description" json:"description"`
	ImageURL         string               `bson:"imageUrl" json:"imageUrl"`
	Location         GeoPoint             `bson:"location" json:"location"`
	WardID           primitive.ObjectID   `bson:"wardId" json:"wardId"`
	AICategory       ComplaintCategory    `bson:"aiCategory" json:"aiCategory"`
	AISeverity       ComplaintSeverity    `bson:"aiSeverity" json:"aiSeverity"`
	AIKeywords       []string             `bson:"aiKeywords" json:"aiKeywords"`
	AIStatus         ClassificationSource `bson:"aiStatus" json:"aiStatus"`
	UpvoteCount      int                  `bson:"upvoteCount" json:"upvoteCount"`
	PriorityScore    int                  `bson:"priorityScore" json:"priorityScore"`
	Status           ComplaintStatus      `bson:"status" json:"status"`
	AuthorityRemarks string               `bson:"authorityRemarks,omitempty" json:"authorityRemarks,omitempty"`
	AfterFixImageURL string               `bson:"afterFixImageUrl,omitempty" json:"afterFixImageUrl,omitempty"`
	ResolvedAt       *time.Time           `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ValidCategory reports whether s is a member of the closed category enum.
func ValidCategory(s string) bool {
	switch ComplaintCategory(s) {
	case CategoryGarbage, CategoryRoad, CategoryDrainage, CategoryLighting, CategoryOther:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a member of the closed severity enum.
func ValidSeverity(s string) bool {
	switch ComplaintSeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	switch ComplaintStatus(s) {
	case StatusSubmitted, StatusAcknowledged, StatusInProgress, StatusResolved:
		return true
	}
	return false
}
