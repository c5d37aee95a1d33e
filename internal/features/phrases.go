package features

import (
	"strings"

	"github.com/sells-group/review-risk/internal/lexicon"
	"github.com/sells-group/review-risk/internal/model"
)

// isSentenceBreak reports full-width and half-width sentence punctuation.
func isSentenceBreak(r rune) bool {
	switch r {
	case '，', '。', '！', '？', ',', '.', '!', '?', '\n':
		return true
	}
	return false
}

// SplitSentences splits text on sentence punctuation and drops blank
// sentences.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, isSentenceBreak)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Candidates are the sentences of one review that quote a negative or a
// positive keyword, in sentence order.
type Candidates struct {
	Negative []string
	Positive []string
}

// ExtractCandidates classifies each sentence of text. A sentence containing
// any negative keyword is a negative candidate only; otherwise a sentence
// containing a positive keyword is a positive candidate.
func ExtractCandidates(text string, lex *lexicon.Lexicon) Candidates {
	var c Candidates
	for _, s := range SplitSentences(text) {
		if lex.MatchesAny(lexicon.AllNegative, s) {
			c.Negative = append(c.Negative, s)
			continue
		}
		if lex.MatchesAny(lexicon.Positive, s) {
			c.Positive = append(c.Positive, s)
		}
	}
	return c
}

// PhraseQuota caps the number of quoted sentences.
type PhraseQuota struct {
	MaxNegative int
	MaxPositive int
}

// DefaultPhraseQuota quotes up to 3 negative and 2 positive sentences.
var DefaultPhraseQuota = PhraseQuota{MaxNegative: 3, MaxPositive: 2}

// MergePhrases folds per-review candidates, in review order, into the
// venue's key phrases: exact duplicates keep their first occurrence and each
// list stops growing once its quota is reached.
func MergePhrases(perReview []Candidates, q PhraseQuota) model.KeyPhrases {
	kp := model.KeyPhrases{
		PositivePoints:      []string{},
		KeyNegativeKeywords: []string{},
	}
	seenNeg := make(map[string]struct{})
	seenPos := make(map[string]struct{})

	for _, c := range perReview {
		kp.KeyNegativeKeywords = appendUnique(kp.KeyNegativeKeywords, c.Negative, seenNeg, q.MaxNegative)
		kp.PositivePoints = appendUnique(kp.PositivePoints, c.Positive, seenPos, q.MaxPositive)
	}
	return kp
}

func appendUnique(dst, src []string, seen map[string]struct{}, limit int) []string {
	for _, s := range src {
		if len(dst) >= limit {
			break
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
