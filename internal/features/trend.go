package features

import (
	"time"

	"github.com/sells-group/review-risk/internal/model"
)

// TrendConfig controls what counts as a recent review.
type TrendConfig struct {
	Window    time.Duration
	MinRecent int
}

// DefaultTrendConfig compares the last 90 days and needs more than 5 recent
// reviews.
var DefaultTrendConfig = TrendConfig{Window: 90 * 24 * time.Hour, MinRecent: 5}

// AnalyzeTrend compares the venue's historical average rating with the
// average of reviews published within the window before now. Reviews on the
// window boundary are recent. With MinRecent or fewer recent reviews the
// recent average is N/A and the trend is 0.
func AnalyzeTrend(reviews []model.ClassifiedReview, meta model.VenueMetadata, now time.Time, cfg TrendConfig) model.TrendInfo {
	var historical float64
	if meta.DeclaredTotalRating != nil {
		historical = *meta.DeclaredTotalRating
	} else if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		historical = float64(sum) / float64(len(reviews))
	}

	cutoff := now.Add(-cfg.Window)
	recentSum, recentN := 0, 0
	for _, r := range reviews {
		if !r.PublishedAt.Before(cutoff) {
			recentSum += r.Rating
			recentN++
		}
	}

	info := model.TrendInfo{
		HistoricalAvg:       model.Round(historical, 2),
		TotalReviews:        meta.DeclaredReviewCount,
		ReviewsDistribution: meta.DeclaredDistribution,
	}
	if info.ReviewsDistribution == nil {
		info.ReviewsDistribution = model.Distribution{}
	}

	if recentN > cfg.MinRecent {
		recent := float64(recentSum) / float64(recentN)
		info.RecentAvg = model.RecentAverage{Value: model.Round(recent, 2), Valid: true}
		info.TrendScore = model.Round(historical-recent, 3)
	}
	return info
}
