package services

import (
	"testing"
	"time"

	"civicfix-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComplaint(severity models.ComplaintSeverity, upvotes int, age time.Duration, status models.ComplaintStatus, now time.Time) *models.Complaint {
	return &models.Complaint{
		AISeverity:  severity,
		UpvoteCount: upvotes,
		Status:      status,
		CreatedAt:   now.Add(-age),
	}
}

func TestCalculatePriority_SeverityBase(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		severity models.ComplaintSeverity
		want     int
	}{
		{"high", models.SeverityHigh, 50},
		{"medium", models.SeverityMedium, 30},
		{"low", models.SeverityLow, 10},
		{"unknown", models.ComplaintSeverity("critical"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComplaint(tt.severity, 0, time.Hour, models.StatusSubmitted, now)
			assert.Equal(t, tt.want, CalculatePriority(c, now))
		})
	}
}

func TestCalculatePriority_UpvoteCap(t *testing.T) {
	now := time.Now()

	tests := []struct {
		upvotes int
		want    int
	}{
		{0, 0},
		{1, 5},
		{5, 25},
		{6, 30},
		{10, 30},
		{100, 30},
	}

	for _, tt := range tests {
		c := newComplaint(models.ComplaintSeverity("none"), tt.upvotes, time.Hour, models.StatusSubmitted, now)
		assert.Equal(t, tt.want, CalculatePriority(c, now), "upvotes=%d", tt.upvotes)
	}
}

func TestCalculatePriority_AgeEscalation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		age  time.Duration
		want int
	}{
		{0, 0},
		{11 * time.Hour, 0},
		{12 * time.Hour, 5},
		{23 * time.Hour, 5},
		{24 * time.Hour, 10},
		{30 * time.Hour, 10},
		{60 * time.Hour, 25},
		{72 * time.Hour, 30},
		{200 * time.Hour, 30}, // plateaus at 72h pending
	}

	for _, tt := range tests {
		c := newComplaint(models.ComplaintSeverity("none"), 0, tt.age, models.StatusSubmitted, now)
		assert.Equal(t, tt.want, CalculatePriority(c, now), "age=%v", tt.age)
	}
}

func TestCalculatePriority_AgeMonotonic(t *testing.T) {
	now := time.Now()

	prev := 0
	for hours := 0; hours <= 90; hours++ {
		c := newComplaint(models.SeverityMedium, 2, time.Duration(hours)*time.Hour, models.StatusSubmitted, now)
		score := CalculatePriority(c, now)
		require.GreaterOrEqual(t, score, prev, "score must not decrease as hours pending grow (at %dh)", hours)
		prev = score
	}
}

func TestCalculatePriority_StatusAdjustment(t *testing.T) {
	now := time.Now()

	submitted := newComplaint(models.SeverityHigh, 0, time.Hour, models.StatusSubmitted, now)
	inProgress := newComplaint(models.SeverityHigh, 0, time.Hour, models.StatusInProgress, now)
	assert.Equal(t, 50, CalculatePriority(submitted, now))
	assert.Equal(t, 30, CalculatePriority(inProgress, now))
}

func TestCalculatePriority_ResolvedAlwaysZero(t *testing.T) {
	now := time.Now()

	c := newComplaint(models.SeverityHigh, 100, 500*time.Hour, models.StatusResolved, now)
	assert.Equal(t, 0, CalculatePriority(c, now))
}

func TestCalculatePriority_NeverNegative(t *testing.T) {
	now := time.Now()

	// No severity base, no votes, fresh, in progress: 0 - 20 clamps to 0.
	c := newComplaint(models.ComplaintSeverity("none"), 0, time.Hour, models.StatusInProgress, now)
	assert.Equal(t, 0, CalculatePriority(c, now))
}

func TestCalculatePriority_CappedAtHundred(t *testing.T) {
	now := time.Now()

	// Per-term maxima sum to 110 before the final clamp.
	c := newComplaint(models.SeverityHigh, 20, 100*time.Hour, models.StatusSubmitted, now)
	assert.Equal(t, 100, CalculatePriority(c, now))
}

func TestCalculatePriority_FutureCreatedAt(t *testing.T) {
	now := time.Now()

	// Clock skew: a record stamped slightly in the future earns no age term.
	c := newComplaint(models.SeverityLow, 0, -time.Hour, models.StatusSubmitted, now)
	assert.Equal(t, 10, CalculatePriority(c, now))
}

func TestIsEscalated(t *testing.T) {
	now := time.Now()

	escalated := newComplaint(models.SeverityHigh, 6, 4*24*time.Hour, models.StatusSubmitted, now)
	escalated.PriorityScore = 85
	assert.True(t, IsEscalated(escalated, now, DefaultEscalationDays, DefaultEscalationThreshold))

	tooYoung := newComplaint(models.SeverityHigh, 6, 24*time.Hour, models.StatusSubmitted, now)
	tooYoung.PriorityScore = 90
	assert.False(t, IsEscalated(tooYoung, now, DefaultEscalationDays, DefaultEscalationThreshold))

	lowScore := newComplaint(models.SeverityLow, 0, 10*24*time.Hour, models.StatusSubmitted, now)
	lowScore.PriorityScore = 40
	assert.False(t, IsEscalated(lowScore, now, DefaultEscalationDays, DefaultEscalationThreshold))

	resolved := newComplaint(models.SeverityHigh, 6, 10*24*time.Hour, models.StatusResolved, now)
	resolved.PriorityScore = 85
	assert.False(t, IsEscalated(resolved, now, DefaultEscalationDays, DefaultEscalationThreshold))
}
