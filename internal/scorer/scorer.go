package scorer

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/config"
	"github.com/sells-group/review-risk/internal/model"
)

// Scorer turns classified reviews and trend info into a ScoreResult.
type Scorer struct {
	cfg config.ScorerConfig
}

// New creates a Scorer after validating cfg.
func New(cfg config.ScorerConfig) (*Scorer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() config.ScorerConfig {
	return s.cfg
}

// clamp bounds v to [0, 100]. NaN maps to 0.
func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// NegativeReviewsScore (F1) measures the depth of low-star reviews in the
// venue's declared distribution: one-star reviews weigh 1.5, two-star 1.0,
// scaled by 200 over the declared total.
func NegativeReviewsScore(dist model.Distribution, totalReviews int) float64 {
	if totalReviews <= 0 {
		return 0
	}
	weighted := float64(dist.Count(model.OneStar))*1.5 + float64(dist.Count(model.TwoStar))
	return clamp(weighted / float64(totalReviews) * 200)
}

// KeywordsScore (F2) averages the tier-weighted keyword hits per review
// (15 high, 5 medium, 1 low) and scales by 100.
func KeywordsScore(reviews []model.ClassifiedReview) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.HighRiskCount*15 + r.MediumRiskCount*5 + r.LowRiskCount
	}
	return clamp(float64(sum) / float64(len(reviews)) * 100)
}

// TrendScore (F3) scores rating deterioration. Improvement scores 0.
func TrendScore(trendScore float64) float64 {
	return clamp(math.Max(0, trendScore) * 50)
}

// SentimentScore (F5) maps the mean review sentiment from [-1, 1] onto
// [100, 0]. Reviews without sentiment are skipped; if none has any, the
// score is 0.
func SentimentScore(reviews []model.ClassifiedReview) float64 {
	sum, n := 0.0, 0
	for _, r := range reviews {
		if !r.HasSentiment {
			continue
		}
		sum += r.Sentiment
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp((1 - sum/float64(n)) * 50)
}

// SubScores computes all four factor scores.
func SubScores(reviews []model.ClassifiedReview, trend model.TrendInfo) model.SubScores {
	return model.SubScores{
		NegativeReviews: NegativeReviewsScore(trend.ReviewsDistribution, trend.TotalReviews),
		Keywords:        KeywordsScore(reviews),
		Trend:           TrendScore(trend.TrendScore),
		Sentiment:       SentimentScore(reviews),
	}
}

// Score combines the sub-scores with the configured weights, clamps the
// result and generates the tier and summary.
func (s *Scorer) Score(reviews []model.ClassifiedReview, trend model.TrendInfo) model.ScoreResult {
	sub := SubScores(reviews, trend)
	final := clamp(
		sub.NegativeReviews*s.cfg.NegativeReviewsWeight +
			sub.Keywords*s.cfg.KeywordsWeight +
			sub.Trend*s.cfg.TrendWeight +
			sub.Sentiment*s.cfg.SentimentWeight,
	)

	res := model.ScoreResult{
		FinalScore: final,
		Summary:    s.Summarize(sub, final),
		Tier:       s.TierFor(final),
		SubScores:  sub,
	}

	zap.L().Info("scorer: scored venue",
		zap.Float64("f1_negative_reviews", sub.NegativeReviews),
		zap.Float64("f2_keywords", sub.Keywords),
		zap.Float64("f3_trend", sub.Trend),
		zap.Float64("f5_sentiment", sub.Sentiment),
		zap.Float64("final_score", final),
		zap.String("risk_level", string(res.Tier)),
	)
	return res
}

// Neutral is the result for a venue with no usable reviews.
func (s *Scorer) Neutral() model.ScoreResult {
	return model.ScoreResult{
		FinalScore: 0,
		Summary:    LowRiskSummary,
		Tier:       s.TierFor(0),
	}
}

// TierFor buckets a final score. Thresholds are exclusive lower bounds, so
// a score equal to the high threshold is medium.
func (s *Scorer) TierFor(final float64) model.RiskTier {
	switch {
	case final > s.cfg.HighRiskAbove:
		return model.RiskHigh
	case final > s.cfg.MediumRiskAbove:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
