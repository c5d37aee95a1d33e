package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/review-risk/internal/model"
)

// Report is the caller-facing rendering of a Result.
type Report struct {
	PlaceName           string          `json:"place_name"`
	LandmineScore       float64         `json:"landmine_score"`
	RiskLevel           model.RiskTier  `json:"risk_level"`
	Summary             string          `json:"summary"`
	KeyNegativeKeywords []string        `json:"key_negative_keywords"`
	PositivePoints      []string        `json:"positive_points"`
	Details             model.TrendInfo `json:"details"`
	SubScores           model.SubScores `json:"sub_scores"`
}

// BuildReport assembles the report for a scored venue. The venue title is
// used as the display name, falling back to the place id.
func BuildReport(place model.PlaceInfo, res *Result) Report {
	name := place.Title
	if name == "" {
		name = place.PlaceID
	}

	r := Report{
		PlaceName:           name,
		LandmineScore:       model.Round(res.Score.FinalScore, 2),
		RiskLevel:           res.Score.Tier,
		Summary:             res.Score.Summary,
		KeyNegativeKeywords: []string{},
		PositivePoints:      []string{},
		SubScores:           res.Score.SubScores,
	}
	if res.Features != nil {
		r.Details = res.Features.Trend
		if res.Features.Phrases.KeyNegativeKeywords != nil {
			r.KeyNegativeKeywords = res.Features.Phrases.KeyNegativeKeywords
		}
		if res.Features.Phrases.PositivePoints != nil {
			r.PositivePoints = res.Features.Phrases.PositivePoints
		}
	}
	if r.Details.ReviewsDistribution == nil {
		r.Details.ReviewsDistribution = model.Distribution{}
	}
	return r
}

// FormatReport renders a report as Markdown for terminal output.
func FormatReport(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Risk Report: %s\n\n", r.PlaceName)
	fmt.Fprintf(&b, "- Score: %.2f (%s)\n", r.LandmineScore, r.RiskLevel)
	fmt.Fprintf(&b, "- Summary: %s\n\n", r.Summary)

	b.WriteString("## Factors\n")
	fmt.Fprintf(&b, "- Low-star share: %.2f\n", r.SubScores.NegativeReviews)
	fmt.Fprintf(&b, "- Risk keywords: %.2f\n", r.SubScores.Keywords)
	fmt.Fprintf(&b, "- Rating trend: %.2f\n", r.SubScores.Trend)
	fmt.Fprintf(&b, "- Sentiment: %.2f\n\n", r.SubScores.Sentiment)

	b.WriteString("## Trend\n")
	fmt.Fprintf(&b, "- Historical average: %.2f\n", r.Details.HistoricalAvg)
	fmt.Fprintf(&b, "- Recent average: %s\n", r.Details.RecentAvg)
	fmt.Fprintf(&b, "- Trend score: %.3f\n", r.Details.TrendScore)
	fmt.Fprintf(&b, "- Total reviews: %d\n\n", r.Details.TotalReviews)

	writeList(&b, "Negative mentions", r.KeyNegativeKeywords)
	writeList(&b, "Positive mentions", r.PositivePoints)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "## %s\n", title)
	if len(items) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
