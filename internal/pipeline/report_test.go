package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/model"
)

func TestBuildReport(t *testing.T) {
	p := newTestPipeline(t)
	place := samplePlace()

	res, err := p.RunPlace(context.Background(), place)
	require.NoError(t, err)

	r := BuildReport(place, res)
	assert.Equal(t, "Noodle House", r.PlaceName)
	assert.InDelta(t, 23.31, r.LandmineScore, 1e-9)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
	assert.Equal(t, res.Score.Summary, r.Summary)
	assert.Equal(t, []string{"難吃", "太貴了"}, r.KeyNegativeKeywords)
	assert.Equal(t, []string{"好吃", "推薦"}, r.PositivePoints)
	assert.Equal(t, 20, r.Details.TotalReviews)
	assert.Equal(t, res.Score.SubScores, r.SubScores)
}

func TestBuildReport_FallsBackToPlaceID(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), nil, model.VenueMetadata{})
	require.NoError(t, err)

	r := BuildReport(model.PlaceInfo{PlaceID: "ChIJ-unknown"}, res)
	assert.Equal(t, "ChIJ-unknown", r.PlaceName)
	assert.Zero(t, r.LandmineScore)
	assert.NotNil(t, r.KeyNegativeKeywords)
	assert.NotNil(t, r.PositivePoints)
}

func TestReportJSON(t *testing.T) {
	res := &Result{
		Score: model.ScoreResult{
			FinalScore: 12.3456,
			Summary:    "ok",
			Tier:       model.RiskLow,
		},
	}

	data, err := json.Marshal(BuildReport(model.PlaceInfo{Title: "Cafe"}, res))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Cafe", got["place_name"])
	assert.InDelta(t, 12.35, got["landmine_score"], 1e-9)
	assert.Equal(t, "low", got["risk_level"])
	assert.Equal(t, []any{}, got["key_negative_keywords"])
	assert.Equal(t, []any{}, got["positive_points"])

	details, ok := got["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "N/A", details["recent_avg"])
	assert.Equal(t, map[string]any{}, details["reviews_distribution"])
}

func TestFormatReport(t *testing.T) {
	r := Report{
		PlaceName:           "Noodle House",
		LandmineScore:       23.31,
		RiskLevel:           model.RiskLow,
		Summary:             "Caution",
		KeyNegativeKeywords: []string{"難吃"},
		PositivePoints:      []string{},
		Details: model.TrendInfo{
			HistoricalAvg: 4.6,
			RecentAvg:     model.RecentAverage{Value: 4.13, Valid: true},
			TrendScore:    0.475,
			TotalReviews:  20,
		},
	}

	out := FormatReport(r)
	assert.Contains(t, out, "# Risk Report: Noodle House")
	assert.Contains(t, out, "- Score: 23.31 (low)")
	assert.Contains(t, out, "- Recent average: 4.13")
	assert.Contains(t, out, "- Trend score: 0.475")
	assert.Contains(t, out, "## Negative mentions\n- 難吃\n")
	assert.Contains(t, out, "## Positive mentions\nNone.\n")
}
