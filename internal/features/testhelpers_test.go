package features

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
)

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func testLexicon() *lexicon.Lexicon {
	return lexicon.New(
		[]string{"食物中毒", "蟑螂"},
		[]string{"難吃", "態度差"},
		[]string{"貴", "排隊"},
		[]string{"好吃", "親切", "推薦"},
	)
}

func rawReview(stars any, text any, published any) model.RawReview {
	return model.RawReview{
		FieldRating:      stars,
		FieldText:        text,
		FieldPublishedAt: published,
	}
}

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format(time.RFC3339)
}

// mapSentiment scores texts from a fixed table and records calls.
type mapSentiment struct {
	mu     sync.Mutex
	scores map[string]float64
	calls  []string
	langs  []string
}

func (m *mapSentiment) ScoreText(_ context.Context, text, language string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	m.langs = append(m.langs, language)
	return m.scores[text]
}
