package services

import (
	"strings"
	"testing"

	"civicfix-be/models"

	"github.com/stretchr/testify/assert"
)

func TestFallbackClassify_Categories(t *testing.T) {
	tests := []struct {
		name        string
		description string
		category    models.ComplaintCategory
	}{
		{"garbage", "Overflowing bin with trash everywhere", models.CategoryGarbage},
		{"garbage hindi", "Bahut kachra near the market", models.CategoryGarbage},
		{"drainage", "Blocked drain flooding the lane", models.CategoryDrainage},
		{"drainage sewage", "Open manhole leaking sewage", models.CategoryDrainage},
		{"lighting", "Street light not working since last week", models.CategoryLighting},
		{"lighting dark", "Very dark road at night near the park", models.CategoryLighting},
		{"road", "Huge pothole near the bus stop", models.CategoryRoad},
		{"road crack", "Deep crack across the asphalt", models.CategoryRoad},
		{"default", "Something is wrong here", models.CategoryRoad},
		{"empty", "", models.CategoryRoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FallbackClassify(tt.description)
			assert.Equal(t, tt.category, result.Category)
			assert.Equal(t, models.SourceFallback, result.Source)
		})
	}
}

func TestFallbackClassify_FirstMatchingGroupWins(t *testing.T) {
	// Mentions garbage terms and road terms; garbage is scanned first.
	result := FallbackClassify("Garbage dumped on the broken road")
	assert.Equal(t, models.CategoryGarbage, result.Category)
	assert.Contains(t, result.Keywords, "garbage")
	assert.NotContains(t, result.Keywords, "road-damage")
}

func TestFallbackClassify_Severity(t *testing.T) {
	tests := []struct {
		name        string
		description string
		severity    models.ComplaintSeverity
	}{
		{"danger", "Pothole causing danger to bikes", models.SeverityHigh},
		{"accident", "Accident spot due to open manhole", models.SeverityHigh},
		{"emergency", "Emergency, sewage entering homes", models.SeverityHigh},
		{"minor", "Minor crack in the pavement", models.SeverityLow},
		{"temporary", "Temporary waterlogging after rain", models.SeverityLow},
		{"neutral", "Streetlight fused on 5th cross", models.SeverityMedium},
		{"empty", "", models.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FallbackClassify(tt.description)
			assert.Equal(t, tt.severity, result.Severity)
		})
	}
}

func TestFallbackClassify_SeverityKeywords(t *testing.T) {
	high := FallbackClassify("Dangerous deep pothole")
	assert.Contains(t, high.Keywords, "high-risk")
	assert.Contains(t, high.Keywords, "emergency")

	low := FallbackClassify("Small pothole")
	assert.Contains(t, low.Keywords, "low-risk")
}

func TestFallbackClassify_KeywordsDeduplicated(t *testing.T) {
	result := FallbackClassify("garbage garbage garbage trash waste danger emergency")

	seen := map[string]int{}
	for _, k := range result.Keywords {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "keyword %q repeated", k)
	}
}

func TestFallbackClassify_CaseInsensitive(t *testing.T) {
	result := FallbackClassify("GARBAGE DUMPED NEAR SCHOOL, VERY DANGEROUS")
	assert.Equal(t, models.CategoryGarbage, result.Category)
	assert.Equal(t, models.SeverityHigh, result.Severity)
}

// FallbackClassify must return valid enums for any input whatsoever.
func TestFallbackClassify_AlwaysCompletes(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		strings.Repeat("x", 100000),
		"Ωむ🚧\x00\xff",
		"{\"category\": \"garbage\"}",
	}

	for _, input := range inputs {
		result := FallbackClassify(input)
		assert.True(t, models.ValidCategory(string(result.Category)), "input %q", input)
		assert.True(t, models.ValidSeverity(string(result.Severity)), "input %q", input)
		assert.Equal(t, models.SourceFallback, result.Source)
		assert.NotNil(t, result.Keywords)
	}
}
