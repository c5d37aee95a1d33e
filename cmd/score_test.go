package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/features"
	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
	"github.com/sells-group/review-risk/internal/pipeline"
	"github.com/sells-group/review-risk/internal/scorer"
)

const quietDataset = `[{
	"placeId": "ChIJ-cafe",
	"title": "Quiet Cafe",
	"totalScore": 4.8,
	"reviewsCount": 2,
	"reviewsDistribution": {"fiveStar": 2},
	"reviews": [
		{"stars": 5, "text": "好吃", "publishedAtDate": "2019-03-01T10:00:00Z"},
		{"stars": 5, "text": "推薦", "publishedAtDate": "2019-04-01T10:00:00Z"}
	]
}]`

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	sc, err := scorer.New(scorer.DefaultScorerConfig())
	require.NoError(t, err)
	lex := lexicon.New([]string{"蟑螂"}, []string{"難吃"}, []string{"貴"}, []string{"好吃", "推薦"})
	return pipeline.New(features.NewEngineer(features.DefaultConfig(), lex), sc)
}

func TestScorePlaces(t *testing.T) {
	reports, err := scorePlaces(context.Background(), newTestPipeline(t), []byte(quietDataset))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "Quiet Cafe", r.PlaceName)
	assert.Zero(t, r.LandmineScore)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
	assert.Equal(t, scorer.LowRiskSummary, r.Summary)
	assert.Equal(t, 2, r.Details.TotalReviews)
	assert.False(t, r.Details.RecentAvg.Valid)
}

func TestScorePlaces_SingleObject(t *testing.T) {
	single := strings.TrimSuffix(strings.TrimPrefix(quietDataset, "["), "]")

	reports, err := scorePlaces(context.Background(), newTestPipeline(t), []byte(single))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Quiet Cafe", reports[0].PlaceName)
}

func TestScorePlaces_MissingField(t *testing.T) {
	data := `{"title": "Broken", "reviews": [{"stars": 1, "publishedAtDate": "2024-01-01"}]}`

	_, err := scorePlaces(context.Background(), newTestPipeline(t), []byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
	assert.Contains(t, err.Error(), `missing required field "text"`)
}

func TestScorePlaces_BadJSON(t *testing.T) {
	_, err := scorePlaces(context.Background(), newTestPipeline(t), []byte(`{"title":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode dataset")
}

func TestWriteReports_JSON(t *testing.T) {
	reports, err := scorePlaces(context.Background(), newTestPipeline(t), []byte(quietDataset))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReports(&buf, reports, "json"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Quiet Cafe", got[0]["place_name"])
	assert.Equal(t, "low", got[0]["risk_level"])
}

func TestWriteReports_Text(t *testing.T) {
	reports := []pipeline.Report{
		{PlaceName: "First", RiskLevel: model.RiskLow},
		{PlaceName: "Second", RiskLevel: model.RiskHigh, LandmineScore: 80},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReports(&buf, reports, "text"))

	out := buf.String()
	assert.Contains(t, out, "# Risk Report: First")
	assert.Contains(t, out, "# Risk Report: Second")
	assert.Contains(t, out, "- Score: 80.00 (high)")
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Second"))
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(quietDataset), 0o600))

	data, err := readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, quietDataset, string(data))

	data, err = readInput(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
