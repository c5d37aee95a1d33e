package model

import (
	"encoding/json"
	"math"
)

// RecentAverage is the mean rating of recent reviews, or "N/A" when too few
// recent reviews exist.
type RecentAverage struct {
	Value float64
	Valid bool
}

// MarshalJSON renders an invalid average as "N/A".
func (r RecentAverage) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or the "N/A" marker.
func (r *RecentAverage) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*r = RecentAverage{}
		return nil //nolint:nilerr // any non-number is N/A
	}
	*r = RecentAverage{Value: v, Valid: true}
	return nil
}

func (r RecentAverage) String() string {
	if !r.Valid {
		return "N/A"
	}
	b, _ := json.Marshal(r.Value)
	return string(b)
}

// TrendInfo describes how recent ratings compare with the venue's history.
type TrendInfo struct {
	HistoricalAvg       float64       `json:"historical_avg"`
	RecentAvg           RecentAverage `json:"recent_avg"`
	TrendScore          float64       `json:"trend_score"`
	TotalReviews        int           `json:"total_reviews"`
	ReviewsDistribution Distribution  `json:"reviews_distribution"`
}

// KeyPhrases holds representative sentences quoted from reviews.
type KeyPhrases struct {
	PositivePoints      []string `json:"positive_points"`
	KeyNegativeKeywords []string `json:"key_negative_keywords"`
}

// SubScores are the four factor scores, each in [0, 100].
type SubScores struct {
	NegativeReviews float64 `json:"f1_negative_reviews"`
	Keywords        float64 `json:"f2_keywords"`
	Trend           float64 `json:"f3_trend"`
	Sentiment       float64 `json:"f5_sentiment"`
}

// RiskTier is a coarse bucket derived from the final score.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// ScoreResult is the output of the scorer for one venue.
type ScoreResult struct {
	FinalScore float64   `json:"final_score"`
	Summary    string    `json:"summary"`
	Tier       RiskTier  `json:"risk_level"`
	SubScores  SubScores `json:"sub_scores"`
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
