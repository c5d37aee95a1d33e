// Package lexicon loads the tiered keyword sets used to classify reviews and
// provides word segmentation for matching them.
package lexicon

import (
	"sort"
	"strings"
)

// Tier identifies one keyword set.
type Tier int

const (
	HighRisk Tier = iota
	MediumRisk
	LowRisk
	Positive
	// AllNegative is the union of the three risk tiers.
	AllNegative
)

func (t Tier) String() string {
	switch t {
	case HighRisk:
		return "high_risk"
	case MediumRisk:
		return "medium_risk"
	case LowRisk:
		return "low_risk"
	case Positive:
		return "positive"
	case AllNegative:
		return "all_negative"
	default:
		return "unknown"
	}
}

// Set is a string set with O(1) membership.
type Set map[string]struct{}

func newSet(words ...[]string) Set {
	s := make(Set)
	for _, list := range words {
		for _, w := range list {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			s[w] = struct{}{}
		}
	}
	return s
}

// Has reports whether w is in the set.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Lexicon holds the keyword tiers. It is read-only after construction and
// safe for concurrent use.
type Lexicon struct {
	sets  [5]Set
	words [5][]string
}

// New builds a Lexicon from word lists. Blank entries are dropped.
func New(high, medium, low, positive []string) *Lexicon {
	l := &Lexicon{}
	l.sets[HighRisk] = newSet(high)
	l.sets[MediumRisk] = newSet(medium)
	l.sets[LowRisk] = newSet(low)
	l.sets[Positive] = newSet(positive)
	l.sets[AllNegative] = newSet(high, medium, low)
	for i, s := range l.sets {
		words := make([]string, 0, len(s))
		for w := range s {
			words = append(words, w)
		}
		sort.Strings(words)
		l.words[i] = words
	}
	return l
}

// Empty returns a Lexicon with no keywords in any tier.
func Empty() *Lexicon {
	return New(nil, nil, nil, nil)
}

// Contains reports whether word is a member of the tier.
func (l *Lexicon) Contains(t Tier, word string) bool {
	if t < HighRisk || t > AllNegative {
		return false
	}
	return l.sets[t].Has(word)
}

// Size returns the number of keywords in the tier.
func (l *Lexicon) Size(t Tier) int {
	if t < HighRisk || t > AllNegative {
		return 0
	}
	return len(l.sets[t])
}

// Words returns the tier's keywords in sorted order. The slice must not be
// modified.
func (l *Lexicon) Words(t Tier) []string {
	if t < HighRisk || t > AllNegative {
		return nil
	}
	return l.words[t]
}

// CountMatches returns how many distinct tokens belong to the tier.
func (l *Lexicon) CountMatches(t Tier, tokens Set) int {
	set := l.sets[t]
	// Iterate the smaller side of the intersection.
	small, large := tokens, set
	if len(set) < len(tokens) {
		small, large = set, tokens
	}
	n := 0
	for w := range small {
		if large.Has(w) {
			n++
		}
	}
	return n
}

// MatchesAny reports whether any keyword of the tier occurs as a substring
// of s.
func (l *Lexicon) MatchesAny(t Tier, s string) bool {
	for _, w := range l.Words(t) {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
