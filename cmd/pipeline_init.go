package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/config"
	"github.com/sells-group/review-risk/internal/features"
	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/pipeline"
	"github.com/sells-group/review-risk/internal/resilience"
	"github.com/sells-group/review-risk/internal/scorer"
	"github.com/sells-group/review-risk/internal/sentiment"
	anthropicpkg "github.com/sells-group/review-risk/pkg/anthropic"
)

// pipelineEnv holds the scoring pipeline and the resources behind it.
type pipelineEnv struct {
	Lexicon  *lexicon.Lexicon
	Pipeline *pipeline.Pipeline
	cache    *sentiment.RedisCache // may be nil
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.cache != nil {
		_ = pe.cache.Close()
	}
}

// initPipeline loads the lexicon, builds the tokenizer and sentiment scorer,
// and assembles the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	lex := lexicon.LoadOrEmpty(cfg.Lexicon.Path)

	tok, err := newTokenizer(lex, cfg.Lexicon)
	if err != nil {
		return nil, err
	}

	sc, err := scorer.New(cfg.Scorer)
	if err != nil {
		return nil, err
	}

	senti, cache := newSentiment(ctx, cfg.Sentiment)

	eng := features.NewEngineer(featuresConfig(cfg), lex,
		features.WithTokenizer(tok),
		features.WithSentiment(senti),
	)

	return &pipelineEnv{
		Lexicon:  lex,
		Pipeline: pipeline.New(eng, sc),
		cache:    cache,
	}, nil
}

func newTokenizer(lex *lexicon.Lexicon, c config.LexiconConfig) (lexicon.Tokenizer, error) {
	switch c.Tokenizer {
	case "lexicon":
		return lex.DictTokenizer(), nil
	case "gse", "":
		tok, err := lexicon.NewGseTokenizer(c.DictFiles)
		if err != nil {
			return nil, eris.Wrap(err, "init tokenizer")
		}
		return tok, nil
	default:
		return nil, eris.Errorf("init tokenizer: unknown tokenizer %q", c.Tokenizer)
	}
}

// newSentiment returns the configured scorer. Without a provider key every
// review scores neutral and the sentiment factor stays 0.
func newSentiment(ctx context.Context, c config.SentimentConfig) (features.SentimentScorer, *sentiment.RedisCache) {
	if c.Provider == "none" || c.Key == "" {
		zap.L().Info("sentiment scoring disabled", zap.String("provider", c.Provider))
		return sentiment.Disabled{}, nil
	}

	opts := []sentiment.Option{
		sentiment.WithModel(c.Model),
		sentiment.WithTimeout(time.Duration(c.TimeoutSecs) * time.Second),
		sentiment.WithRateLimit(c.RateLimit),
		sentiment.WithRetry(resilience.DefaultPolicy().WithAttempts(c.MaxAttempts)),
		sentiment.WithCircuitBreaker(resilience.NewBreaker(resilience.BreakerSettings{
			Name:      "sentiment",
			Threshold: c.FailureThreshold,
			Cooldown:  time.Duration(c.ResetTimeoutSecs) * time.Second,
			Counts:    resilience.IsTransient,
		})),
	}

	var cache *sentiment.RedisCache
	if c.CacheURL != "" {
		rc, err := sentiment.DialRedisCache(ctx, c.CacheURL)
		if err != nil {
			zap.L().Warn("sentiment cache unavailable, scoring uncached", zap.Error(err))
		} else {
			cache = rc
			opts = append(opts, sentiment.WithCache(rc, time.Duration(c.CacheTTLHours)*time.Hour))
		}
	}

	zap.L().Info("sentiment scoring enabled", zap.String("model", c.Model))
	return sentiment.NewAnthropicScorer(anthropicpkg.NewClient(c.Key), opts...), cache
}

func featuresConfig(c *config.Config) features.Config {
	return features.Config{
		LongReviewChars: c.Features.LongReviewChars,
		Trend: features.TrendConfig{
			Window:    time.Duration(c.Features.RecentWindowDays) * 24 * time.Hour,
			MinRecent: c.Features.MinRecentReviews,
		},
		Phrases: features.PhraseQuota{
			MaxNegative: c.Features.MaxNegativePhrases,
			MaxPositive: c.Features.MaxPositivePhrases,
		},
		Concurrency: c.Features.Concurrency,
		Language:    c.Sentiment.Language,
	}
}
