// Package pipeline turns one venue's raw reviews into a risk score: feature
// extraction followed by weighted scoring.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/features"
	"github.com/sells-group/review-risk/internal/model"
	"github.com/sells-group/review-risk/internal/scorer"
)

// Result is the score for one venue together with the features behind it.
type Result struct {
	Score    model.ScoreResult
	Features *features.Features
}

// Pipeline runs feature extraction and scoring. It is safe for concurrent use.
type Pipeline struct {
	engineer *features.Engineer
	scorer   *scorer.Scorer
}

// New creates a Pipeline.
func New(eng *features.Engineer, sc *scorer.Scorer) *Pipeline {
	return &Pipeline{engineer: eng, scorer: sc}
}

// Run scores a review batch. A malformed batch fails with
// *features.MissingFieldError; a batch with no usable reviews scores neutral.
func (p *Pipeline) Run(ctx context.Context, raw []model.RawReview, meta model.VenueMetadata) (*Result, error) {
	start := time.Now()

	f, err := p.engineer.Run(ctx, raw, meta)
	if err != nil {
		return nil, err
	}

	var score model.ScoreResult
	if len(f.Reviews) == 0 {
		score = p.scorer.Neutral()
	} else {
		score = p.scorer.Score(f.Reviews, f.Trend)
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("reviews", len(f.Reviews)),
		zap.Float64("final_score", score.FinalScore),
		zap.String("risk_level", string(score.Tier)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Score: score, Features: f}, nil
}

// RunPlace scores a scraped venue document.
func (p *Pipeline) RunPlace(ctx context.Context, place model.PlaceInfo) (*Result, error) {
	return p.Run(ctx, place.Reviews, place.Metadata())
}
