package features

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/model"
)

func newTestEngineer(s SentimentScorer, concurrency int) *Engineer {
	cfg := DefaultConfig()
	cfg.Concurrency = concurrency
	return NewEngineer(cfg, testLexicon(),
		WithSentiment(s),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestEngineerRun(t *testing.T) {
	t.Parallel()

	sent := &mapSentiment{scores: map[string]float64{
		"看到蟑螂，難吃":   -0.9,
		"服務親切，推薦": 0.8,
		"超出範圍":       -3,
	}}
	e := newTestEngineer(sent, 4)

	raw := []model.RawReview{
		rawReview(1, "看到蟑螂，難吃", daysAgo(1)),
		rawReview(5, "服務親切，推薦", daysAgo(2)),
		rawReview(3, "   ", daysAgo(3)),
		rawReview(2, "超出範圍", daysAgo(4)),
		rawReview(4, strings.Repeat("長", 101), daysAgo(400)),
	}
	meta := model.VenueMetadata{DeclaredTotalRating: ptr(3.9), DeclaredReviewCount: 42}

	f, err := e.Run(context.Background(), raw, meta)
	require.NoError(t, err)
	require.Len(t, f.Reviews, 4)

	first := f.Reviews[0]
	assert.Equal(t, "看到蟑螂，難吃", first.Text)
	assert.True(t, first.IsNegative)
	assert.Equal(t, 1, first.HighRiskCount)
	assert.Equal(t, 1, first.MediumRiskCount)
	assert.InDelta(t, -0.9, first.Sentiment, 1e-9)
	assert.True(t, first.HasSentiment)

	assert.InDelta(t, 0.8, f.Reviews[1].Sentiment, 1e-9)
	assert.InDelta(t, -1.0, f.Reviews[2].Sentiment, 1e-9, "clamped to [-1, 1]")
	assert.True(t, f.Reviews[3].IsLong)
	assert.Zero(t, f.Reviews[3].Sentiment)

	assert.Equal(t, []string{"看到蟑螂", "難吃"}, f.Phrases.KeyNegativeKeywords)
	assert.Equal(t, []string{"服務親切", "推薦"}, f.Phrases.PositivePoints)

	assert.InDelta(t, 3.9, f.Trend.HistoricalAvg, 1e-9)
	assert.False(t, f.Trend.RecentAvg.Valid)
	assert.Equal(t, 42, f.Trend.TotalReviews)

	assert.Len(t, sent.calls, 4)
	for _, lang := range sent.langs {
		assert.Equal(t, "zh-Hant", lang)
	}
}

func TestEngineerRun_DeterministicUnderConcurrency(t *testing.T) {
	t.Parallel()

	var raw []model.RawReview
	for i := 0; i < 50; i++ {
		raw = append(raw, rawReview(1, fmt.Sprintf("第%d家有蟑螂，第%d道菜好吃", i, i), daysAgo(i)))
	}

	serial, err := newTestEngineer(NeutralSentiment{}, 1).Run(context.Background(), raw, model.VenueMetadata{})
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		parallel, err := newTestEngineer(NeutralSentiment{}, 16).Run(context.Background(), raw, model.VenueMetadata{})
		require.NoError(t, err)
		assert.Equal(t, serial, parallel)
	}

	assert.Equal(t, []string{"第0家有蟑螂", "第1家有蟑螂", "第2家有蟑螂"}, serial.Phrases.KeyNegativeKeywords)
	assert.Equal(t, []string{"第0道菜好吃", "第1道菜好吃"}, serial.Phrases.PositivePoints)
}

func TestEngineerRun_MissingField(t *testing.T) {
	t.Parallel()

	raw := []model.RawReview{
		rawReview(5, "好吃", daysAgo(1)),
		{FieldRating: 4, FieldPublishedAt: daysAgo(1)},
	}
	sent := &mapSentiment{}
	f, err := newTestEngineer(sent, 2).Run(context.Background(), raw, model.VenueMetadata{})

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Nil(t, f)
	assert.Empty(t, sent.calls, "no review is annotated when the batch is rejected")
}

func TestEngineerRun_Empty(t *testing.T) {
	t.Parallel()

	meta := model.VenueMetadata{DeclaredTotalRating: ptr(4.1), DeclaredReviewCount: 8}
	f, err := newTestEngineer(nil, 2).Run(context.Background(), nil, meta)
	require.NoError(t, err)

	assert.Empty(t, f.Reviews)
	assert.Empty(t, f.Phrases.KeyNegativeKeywords)
	assert.Empty(t, f.Phrases.PositivePoints)
	assert.InDelta(t, 4.1, f.Trend.HistoricalAvg, 1e-9)
	assert.False(t, f.Trend.RecentAvg.Valid)
	assert.Equal(t, 8, f.Trend.TotalReviews)
}

func TestEngineerRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw := []model.RawReview{rawReview(5, "好吃", daysAgo(1))}
	_, err := newTestEngineer(NeutralSentiment{}, 1).Run(ctx, raw, model.VenueMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineerRun_SentimentDisabled(t *testing.T) {
	t.Parallel()

	raw := []model.RawReview{rawReview(5, "好吃", daysAgo(1))}
	f, err := newTestEngineer(NeutralSentiment{}, 1).Run(context.Background(), raw, model.VenueMetadata{})
	require.NoError(t, err)
	require.Len(t, f.Reviews, 1)
	assert.False(t, f.Reviews[0].HasSentiment)
	assert.Zero(t, f.Reviews[0].Sentiment)
}

func TestNewEngineer_Defaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Concurrency = 0
	e := NewEngineer(cfg, nil)
	assert.Equal(t, 1, e.cfg.Concurrency)
	assert.IsType(t, NeutralSentiment{}, e.sentiment)
}
