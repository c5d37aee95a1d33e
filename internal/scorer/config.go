// Package scorer combines review features into a bounded landmine score,
// a risk tier and a generated summary.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-risk/internal/config"
)

// DefaultScorerConfig returns the standard factor weights and thresholds.
// Weights sum to 1 but are not required to.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		NegativeReviewsWeight: 0.25,
		KeywordsWeight:        0.45,
		TrendWeight:           0.15,
		SentimentWeight:       0.15,

		SummaryThreshold: 20,
		MediumRiskAbove:  40,
		HighRiskAbove:    70,
	}
}

// WeightSum returns the sum of all factor weights.
func WeightSum(c config.ScorerConfig) float64 {
	return c.NegativeReviewsWeight + c.KeywordsWeight + c.TrendWeight + c.SentimentWeight
}

// ValidateConfig checks that a ScorerConfig is usable. Any finite weight is
// accepted; the final score is clamped instead.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := []struct {
		name string
		v    float64
	}{
		{"negative_reviews_weight", c.NegativeReviewsWeight},
		{"keywords_weight", c.KeywordsWeight},
		{"trend_weight", c.TrendWeight},
		{"sentiment_weight", c.SentimentWeight},
	}
	for _, w := range weights {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			errs = append(errs, fmt.Sprintf("%s must be finite", w.name))
		}
	}

	thresholds := []struct {
		name string
		v    float64
	}{
		{"summary_threshold", c.SummaryThreshold},
		{"medium_risk_above", c.MediumRiskAbove},
		{"high_risk_above", c.HighRiskAbove},
	}
	for _, th := range thresholds {
		if math.IsNaN(th.v) || th.v < 0 || th.v > 100 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 100", th.name))
		}
	}
	if c.HighRiskAbove < c.MediumRiskAbove {
		errs = append(errs, "high_risk_above must be >= medium_risk_above")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
