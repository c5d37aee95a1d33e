package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/config"
	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/sentiment"
)

func TestFeaturesConfig(t *testing.T) {
	c := &config.Config{
		Features: config.FeaturesConfig{
			LongReviewChars:    120,
			RecentWindowDays:   30,
			MinRecentReviews:   3,
			MaxNegativePhrases: 4,
			MaxPositivePhrases: 1,
			Concurrency:        2,
		},
		Sentiment: config.SentimentConfig{Language: "zh-Hant"},
	}

	fc := featuresConfig(c)
	assert.Equal(t, 120, fc.LongReviewChars)
	assert.Equal(t, 30*24*time.Hour, fc.Trend.Window)
	assert.Equal(t, 3, fc.Trend.MinRecent)
	assert.Equal(t, 4, fc.Phrases.MaxNegative)
	assert.Equal(t, 1, fc.Phrases.MaxPositive)
	assert.Equal(t, 2, fc.Concurrency)
	assert.Equal(t, "zh-Hant", fc.Language)
}

func TestNewTokenizer(t *testing.T) {
	lex := lexicon.New(nil, []string{"難吃"}, nil, nil)

	tok, err := newTokenizer(lex, config.LexiconConfig{Tokenizer: "lexicon"})
	require.NoError(t, err)
	_, ok := tok.Tokenize("真的難吃")["難吃"]
	assert.True(t, ok)

	_, err = newTokenizer(lex, config.LexiconConfig{Tokenizer: "whitespace"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tokenizer")
}

func TestNewSentiment_DisabledWithoutKey(t *testing.T) {
	s, cache := newSentiment(context.Background(), config.SentimentConfig{Provider: "anthropic"})
	assert.IsType(t, sentiment.Disabled{}, s)
	assert.Nil(t, cache)

	s, cache = newSentiment(context.Background(), config.SentimentConfig{Provider: "none", Key: "sk-test"})
	assert.IsType(t, sentiment.Disabled{}, s)
	assert.Nil(t, cache)
}

func TestNewSentiment_Anthropic(t *testing.T) {
	s, cache := newSentiment(context.Background(), config.SentimentConfig{
		Provider:    "anthropic",
		Key:         "sk-test",
		Model:       "claude-haiku-4-5-20251001",
		TimeoutSecs: 5,
		RateLimit:   2,
		MaxAttempts: 2,
	})
	assert.IsType(t, &sentiment.AnthropicScorer{}, s)
	assert.Nil(t, cache)
}

func TestNewSentiment_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	s, cache := newSentiment(context.Background(), config.SentimentConfig{
		Provider:      "anthropic",
		Key:           "sk-test",
		CacheURL:      "redis://" + mr.Addr(),
		CacheTTLHours: 1,
	})
	assert.IsType(t, &sentiment.AnthropicScorer{}, s)
	require.NotNil(t, cache)

	env := &pipelineEnv{cache: cache}
	env.Close()
}

func TestNewSentiment_UnreachableCache(t *testing.T) {
	s, cache := newSentiment(context.Background(), config.SentimentConfig{
		Provider: "anthropic",
		Key:      "sk-test",
		CacheURL: "not-a-url",
	})
	assert.IsType(t, &sentiment.AnthropicScorer{}, s)
	assert.Nil(t, cache)
}
