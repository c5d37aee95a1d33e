package features

import (
	"context"
	"math"
)

// SentimentScorer scores a text in [-1, 1]. Implementations must not fail:
// any internal error is reported as 0 (neutral).
type SentimentScorer interface {
	ScoreText(ctx context.Context, text, language string) float64
}

// NeutralSentiment scores every text as 0. It stands for a disabled
// scorer: reviews it annotates carry no sentiment.
type NeutralSentiment struct{}

// ScoreText implements SentimentScorer.
func (NeutralSentiment) ScoreText(context.Context, string, string) float64 { return 0 }

// Enabled reports false.
func (NeutralSentiment) Enabled() bool { return false }

// sentimentEnabled reports whether s produces scores at all. Scorers may
// opt out by implementing Enabled() bool.
func sentimentEnabled(s SentimentScorer) bool {
	if s == nil {
		return false
	}
	if e, ok := s.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

// annotate calls the scorer and forces the result into [-1, 1].
func annotate(ctx context.Context, s SentimentScorer, text, language string) float64 {
	if s == nil {
		return 0
	}
	v := s.ScoreText(ctx, text, language)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
