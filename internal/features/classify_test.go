package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testLexicon(), nil)

	tests := []struct {
		name string
		text string
		want KeywordCounts
	}{
		{"no keywords", "環境乾淨", KeywordCounts{}},
		{"one per tier", "看到蟑螂，而且難吃又貴", KeywordCounts{High: 1, Medium: 1, Low: 1}},
		{"two high", "蟑螂之後食物中毒", KeywordCounts{High: 2}},
		{"positive only", "好吃推薦", KeywordCounts{}},
		{"repeated keyword counts once", strings.Repeat("蟑螂", 5), KeywordCounts{High: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassify_EmptyLexicon(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil, nil)
	assert.Equal(t, KeywordCounts{}, c.Classify("蟑螂蟑螂"))
}

type stubTokenizer struct{ tokens []string }

func (s stubTokenizer) Tokenize(string) lexicon.Set {
	set := lexicon.Set{}
	for _, tok := range s.tokens {
		set[tok] = struct{}{}
	}
	return set
}

func TestClassify_UsesTokenizer(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testLexicon(), stubTokenizer{tokens: []string{"排隊", "態度差"}})
	assert.Equal(t, KeywordCounts{Medium: 1, Low: 1}, c.Classify("ignored"))
}

func TestKeywordCounts_RiskSum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, KeywordCounts{}.RiskSum())
	assert.Equal(t, 15+10+3, KeywordCounts{High: 1, Medium: 2, Low: 3}.RiskSum())
}

func TestClassifyReview_DerivedFlags(t *testing.T) {
	t.Parallel()

	short := classifyReview(model.NormalizedReview{Rating: 2, Text: strings.Repeat("字", 100)}, KeywordCounts{High: 1}, 100)
	assert.True(t, short.IsNegative)
	assert.False(t, short.IsLong, "exactly 100 characters is not long")
	assert.Equal(t, 1, short.HighRiskCount)

	long := classifyReview(model.NormalizedReview{Rating: 3, Text: strings.Repeat("字", 101)}, KeywordCounts{}, 100)
	assert.False(t, long.IsNegative)
	assert.True(t, long.IsLong)
}
