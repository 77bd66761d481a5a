package services

import (
	"regexp"
	"strings"

	"civicfix-be/models"
)

// Classification is the result of the classification pipeline: closed-enum
// category and severity, deduplicated keyword tags, and the path that
// produced them.
type Classification struct {
	Category models.ComplaintCategory
	Severity models.ComplaintSeverity
	Keywords []string
	Source   models.ClassificationSource
}

// categoryRule pairs a keyword pattern with the category and tags it emits.
type categoryRule struct {
	category models.ComplaintCategory
	pattern  *regexp.Regexp
	keywords []string
}

// Category rules are scanned in priority order; the first matching group
// wins. Descriptions matching none default to road.
var categoryRules = []categoryRule{
	{
		category: models.CategoryGarbage,
		pattern:  regexp.MustCompile(`garbage|trash|waste|dump|litter|rubbish|kuda|kachra|dustbin|overflowing bin|unclean|filth|dirty`),
		keywords: []string{"garbage", "waste", "cleanliness", "overflowing-bin"},
	},
	{
		category: models.CategoryDrainage,
		pattern:  regexp.MustCompile(`drain|drainage|sewer|nali|waterlogging|blocked drain|choked|gutter|sewage|manhole|leak`),
		keywords: []string{"drainage", "sewage", "waterlogging", "blocked-drain"},
	},
	{
		category: models.CategoryLighting,
		pattern:  regexp.MustCompile(`street ?light|lamp ?post|no light|dark road|dark street|bulb fused|light not working|power outage`),
		keywords: []string{"streetlight", "dark-area", "lamp-post", "public-safety", "night-visibility"},
	},
	{
		category: models.CategoryRoad,
		pattern:  regexp.MustCompile(`pothole|road|asphalt|broken road|damaged road|crack|uneven|dug up|construction debris|sinkhole`),
		keywords: []string{"road-damage", "pothole", "unsafe-road", "infrastructure"},
	},
}

var (
	highSeverityPattern = regexp.MustCompile(`danger|accident|injury|hospital|emergency|serious|major|huge|deep|risk to life`)
	lowSeverityPattern  = regexp.MustCompile(`minor|small|slow|partial|temporary|few`)
)

// FallbackClassify deterministically classifies a complaint from its
// description alone. It is pure local computation on well-formed string
// input and cannot fail, which is what lets the pipeline guarantee every
// complaint ends up tagged even when the vision service is down.
func FallbackClassify(description string) Classification {
	text := strings.ToLower(description)

	category := models.CategoryRoad
	var keywords []string

	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			category = rule.category
			keywords = append(keywords, rule.keywords...)
			break
		}
	}

	severity := models.SeverityMedium
	if highSeverityPattern.MatchString(text) {
		severity = models.SeverityHigh
		keywords = append(keywords, "high-risk", "emergency")
	} else if lowSeverityPattern.MatchString(text) {
		severity = models.SeverityLow
		keywords = append(keywords, "low-risk")
	}

	return Classification{
		Category: category,
		Severity: severity,
		Keywords: dedupeKeywords(keywords),
		Source:   models.SourceFallback,
	}
}

// dedupeKeywords removes duplicates while keeping first-seen order.
func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
