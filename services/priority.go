package services

import (
	"time"

	"civicfix-be/models"
)

// Scoring weights. These are the contract consumed by escalation thresholds
// and feed sort order everywhere, so they are fixed constants rather than
// configuration.
const (
	severityHighWeight   = 50
	severityMediumWeight = 30
	severityLowWeight    = 10

	upvoteWeight = 5
	upvoteCap    = 30

	ageStepHours = 12
	ageStepScore = 5
	ageCap       = 30

	inProgressPenalty = 20

	maxPriorityScore = 100
)

// Escalation defaults, overridable per query.
const (
	DefaultEscalationThreshold = 80
	DefaultEscalationDays      = 3
)

// CalculatePriority derives the priority score of a complaint from its
// current field values at the given instant. The score is a bounded integer
// in [0,100]; a resolved complaint always scores exactly 0. Pure function:
// callers persist the result themselves.
func CalculatePriority(c *models.Complaint, now time.Time) int {
	if c.Status == models.StatusResolved {
		return 0
	}

	score := 0

	switch c.AISeverity {
	case models.SeverityHigh:
		score += severityHighWeight
	case models.SeverityMedium:
		score += severityMediumWeight
	case models.SeverityLow:
		score += severityLowWeight
	}

	support := c.UpvoteCount * upvoteWeight
	if support > upvoteCap {
		support = upvoteCap
	}
	if support > 0 {
		score += support
	}

	hoursPending := now.Sub(c.CreatedAt).Hours()
	if hoursPending > 0 {
		age := int(hoursPending/ageStepHours) * ageStepScore
		if age > ageCap {
			age = ageCap
		}
		score += age
	}

	if c.Status == models.StatusInProgress {
		score -= inProgressPenalty
	}

	if score < 0 {
		score = 0
	}
	// Per-term caps sum to 110; clamp the total so stored scores stay in
	// the documented [0,100] range.
	if score > maxPriorityScore {
		score = maxPriorityScore
	}

	return score
}

// IsEscalated reports whether a complaint meets the escalation criteria:
// unresolved, score at or above threshold, and pending longer than the
// given window in days.
func IsEscalated(c *models.Complaint, now time.Time, days int, threshold int) bool {
	if c.Status == models.StatusResolved {
		return false
	}
	if c.PriorityScore < threshold {
		return false
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return !c.CreatedAt.After(cutoff)
}
