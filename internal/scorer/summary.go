package scorer

import (
	"fmt"

	"github.com/sells-group/review-risk/internal/model"
)

// Reason names a risk factor in generated summaries.
type Reason string

const (
	ReasonNegativeReviews Reason = "volume of low-star reviews"
	ReasonKeywords        Reason = "negative keyword mentions"
	ReasonTrend           Reason = "declining recent trend"
	ReasonSentiment       Reason = "overall negative sentiment"
)

// LowRiskSummary is used when no factor stands out.
const LowRiskSummary = "The data shows few negative indicators for this venue; overall risk is low."

const (
	cautionFormat = `Caution: the main risk likely comes from "%s".`
	warningFormat = `Warning! Across multiple indicators this venue carries a high risk. The main risk source is "%s".`
)

// DominantReason returns the factor with the highest sub-score and that
// score. Ties go to the earlier factor in F1, F2, F3, F5 order.
func DominantReason(sub model.SubScores) (Reason, float64) {
	factors := []struct {
		reason Reason
		score  float64
	}{
		{ReasonNegativeReviews, sub.NegativeReviews},
		{ReasonKeywords, sub.Keywords},
		{ReasonTrend, sub.Trend},
		{ReasonSentiment, sub.Sentiment},
	}
	best := factors[0]
	for _, f := range factors[1:] {
		if f.score > best.score {
			best = f
		}
	}
	return best.reason, best.score
}

// Summarize names the dominant factor when it exceeds the summary
// threshold, and escalates to a warning when the final score is above the
// high-risk threshold regardless of the individual sub-scores.
func (s *Scorer) Summarize(sub model.SubScores, final float64) string {
	reason, top := DominantReason(sub)
	if final > s.cfg.HighRiskAbove {
		return fmt.Sprintf(warningFormat, reason)
	}
	if top > s.cfg.SummaryThreshold {
		return fmt.Sprintf(cautionFormat, reason)
	}
	return LowRiskSummary
}
