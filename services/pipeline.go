package services

import (
	"context"
	"strings"
	"time"

	"civicfix-be/models"

	"go.uber.org/zap"
)

// DefaultVisionTimeout bounds the external classifier call so a slow vision
// endpoint can never delay the fallback path indefinitely.
const DefaultVisionTimeout = 20 * time.Second

// ClassificationPipeline tags a complaint with category, severity and
// keywords. It tries the external vision model first and recovers every
// failure mode through the deterministic keyword fallback, so Classify
// always returns a usable result and never an error.
type ClassificationPipeline struct {
	vision  VisionClient // nil when AI classification is disabled
	timeout time.Duration
	logger  *zap.Logger
}

func NewClassificationPipeline(vision VisionClient, timeout time.Duration, logger *zap.Logger) *ClassificationPipeline {
	if timeout <= 0 {
		timeout = DefaultVisionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationPipeline{vision: vision, timeout: timeout, logger: logger}
}

// Classify runs the classification state machine for one complaint. The
// caller persists the result; classification failures are resolved locally
// and never surface as request failures.
func (p *ClassificationPipeline) Classify(ctx context.Context, description, imageURL string) Classification {
	if p.vision == nil {
		return FallbackClassify(description)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	verdict := p.vision.Inspect(callCtx, imageURL, description)

	switch verdict.Kind {
	case VerdictRelevant:
		return Classification{
			Category: normalizeCategory(verdict.Category),
			Severity: normalizeSeverity(verdict.Severity),
			Keywords: dedupeKeywords(verdict.Keywords),
			Source:   models.SourceAI,
		}
	case VerdictIrrelevant:
		p.logger.Info("vision rejected evidence as irrelevant, using fallback classifier")
		return FallbackClassify(description)
	default:
		p.logger.Warn("vision classification unavailable, using fallback classifier",
			zap.Error(verdict.Err))
		return FallbackClassify(description)
	}
}

// normalizeCategory coerces the model's free-form category onto the closed
// enum. Unknown or null values default to road, matching the fallback
// classifier's default.
func normalizeCategory(s string) models.ComplaintCategory {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.ValidCategory(s) {
		return models.ComplaintCategory(s)
	}
	return models.CategoryRoad
}

// normalizeSeverity coerces the model's severity onto the closed enum,
// defaulting to medium.
func normalizeSeverity(s string) models.ComplaintSeverity {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.ValidSeverity(s) {
		return models.ComplaintSeverity(s)
	}
	return models.SeverityMedium
}
