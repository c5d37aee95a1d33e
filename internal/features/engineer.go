package features

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
)

// Config tunes feature extraction.
type Config struct {
	LongReviewChars int
	Trend           TrendConfig
	Phrases         PhraseQuota
	// Concurrency bounds the per-review workers.
	Concurrency int
	// Language is passed to the sentiment scorer.
	Language string
}

// DefaultConfig returns the standard extraction settings.
func DefaultConfig() Config {
	return Config{
		LongReviewChars: 100,
		Trend:           DefaultTrendConfig,
		Phrases:         DefaultPhraseQuota,
		Concurrency:     8,
		Language:        "zh-Hant",
	}
}

// Features is everything extracted from one venue's reviews.
type Features struct {
	Reviews []model.ClassifiedReview
	Trend   model.TrendInfo
	Phrases model.KeyPhrases
}

// Engineer runs normalization, classification, sentiment annotation, phrase
// extraction and trend analysis over a review batch. It holds no per-run
// state and is safe for concurrent use.
type Engineer struct {
	cfg        Config
	lex        *lexicon.Lexicon
	classifier *Classifier
	sentiment  SentimentScorer
	now        func() time.Time
}

// Option configures an Engineer.
type Option func(*Engineer)

// WithClock overrides the time source used to find recent reviews.
func WithClock(now func() time.Time) Option {
	return func(e *Engineer) { e.now = now }
}

// WithSentiment sets the sentiment scorer. Without it every review scores 0.
func WithSentiment(s SentimentScorer) Option {
	return func(e *Engineer) { e.sentiment = s }
}

// WithTokenizer sets the word segmenter used for keyword counting.
func WithTokenizer(tok lexicon.Tokenizer) Option {
	return func(e *Engineer) { e.classifier = NewClassifier(e.lex, tok) }
}

// NewEngineer creates an Engineer over a loaded lexicon.
func NewEngineer(cfg Config, lex *lexicon.Lexicon, opts ...Option) *Engineer {
	if lex == nil {
		lex = lexicon.Empty()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	e := &Engineer{
		cfg:       cfg,
		lex:       lex,
		sentiment: NeutralSentiment{},
		now:       time.Now,
	}
	e.classifier = NewClassifier(lex, nil)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type reviewResult struct {
	review     model.ClassifiedReview
	candidates Candidates
}

// Run extracts features from a raw batch. A malformed batch returns
// *MissingFieldError. An empty or fully filtered batch returns Features with
// no reviews.
func (e *Engineer) Run(ctx context.Context, raw []model.RawReview, meta model.VenueMetadata) (*Features, error) {
	log := zap.L().With(zap.String("stage", "features"))

	reviews, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	log.Info("features: normalized reviews",
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(reviews)),
	)

	now := e.now()
	if len(reviews) == 0 {
		return &Features{
			Reviews: []model.ClassifiedReview{},
			Trend:   AnalyzeTrend(nil, meta, now, e.cfg.Trend),
			Phrases: MergePhrases(nil, e.cfg.Phrases),
		}, nil
	}

	// Map: each review is independent. Results land in their input slot so
	// the merge below sees review order regardless of scheduling.
	withSentiment := sentimentEnabled(e.sentiment)
	results := make([]reviewResult, len(reviews))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, r := range reviews {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cr := classifyReview(r, e.classifier.Classify(r.Text), e.cfg.LongReviewChars)
			if withSentiment {
				cr.Sentiment = annotate(gctx, e.sentiment, r.Text, e.cfg.Language)
				cr.HasSentiment = true
			}
			results[i] = reviewResult{
				review:     cr,
				candidates: ExtractCandidates(r.Text, e.lex),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "features: annotate reviews")
	}

	// Reduce.
	classified := make([]model.ClassifiedReview, len(results))
	candidates := make([]Candidates, len(results))
	keywordHits := 0
	for i, res := range results {
		classified[i] = res.review
		candidates[i] = res.candidates
		keywordHits += res.review.HighRiskCount + res.review.MediumRiskCount + res.review.LowRiskCount
	}

	f := &Features{
		Reviews: classified,
		Trend:   AnalyzeTrend(classified, meta, now, e.cfg.Trend),
		Phrases: MergePhrases(candidates, e.cfg.Phrases),
	}

	log.Info("features: extraction complete",
		zap.Int("reviews", len(classified)),
		zap.Int("keyword_hits", keywordHits),
		zap.Int("negative_phrases", len(f.Phrases.KeyNegativeKeywords)),
		zap.Int("positive_phrases", len(f.Phrases.PositivePoints)),
		zap.Stringer("recent_avg", f.Trend.RecentAvg),
		zap.Float64("trend_score", f.Trend.TrendScore),
	)
	return f, nil
}
