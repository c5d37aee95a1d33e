package features

import (
	"unicode/utf8"

	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
)

// KeywordCounts is the number of distinct lexicon keywords per risk tier
// found in one review.
type KeywordCounts struct {
	High   int
	Medium int
	Low    int
}

// RiskSum weights the counts 15/5/1 by tier.
func (k KeywordCounts) RiskSum() int {
	return k.High*15 + k.Medium*5 + k.Low
}

// Classifier counts lexicon hits in review text.
type Classifier struct {
	lex *lexicon.Lexicon
	tok lexicon.Tokenizer
}

// NewClassifier creates a Classifier. A nil tokenizer falls back to
// maximum matching over the lexicon's own vocabulary.
func NewClassifier(lex *lexicon.Lexicon, tok lexicon.Tokenizer) *Classifier {
	if lex == nil {
		lex = lexicon.Empty()
	}
	if tok == nil {
		tok = lex.DictTokenizer()
	}
	return &Classifier{lex: lex, tok: tok}
}

// Classify segments text into distinct tokens and counts how many belong to
// each risk tier. A keyword repeated within the text counts once.
func (c *Classifier) Classify(text string) KeywordCounts {
	tokens := c.tok.Tokenize(text)
	return KeywordCounts{
		High:   c.lex.CountMatches(lexicon.HighRisk, tokens),
		Medium: c.lex.CountMatches(lexicon.MediumRisk, tokens),
		Low:    c.lex.CountMatches(lexicon.LowRisk, tokens),
	}
}

// classifyReview derives the rating, length and keyword features. Sentiment
// is attached separately.
func classifyReview(r model.NormalizedReview, counts KeywordCounts, longChars int) model.ClassifiedReview {
	return model.ClassifiedReview{
		NormalizedReview: r,
		IsNegative:       r.Rating <= 2,
		IsLong:           utf8.RuneCountInString(r.Text) > longChars,
		HighRiskCount:    counts.High,
		MediumRiskCount:  counts.Medium,
		LowRiskCount:     counts.Low,
	}
}
