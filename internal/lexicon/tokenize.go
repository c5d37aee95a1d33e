package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/rotisserie/eris"
)

// Tokenizer segments text into its set of distinct word tokens.
type Tokenizer interface {
	Tokenize(text string) Set
}

// GseTokenizer segments Chinese text with a dictionary-based segmenter in
// precise (non full) mode, equivalent to jieba's default cut.
type GseTokenizer struct {
	seg gse.Segmenter
}

// NewGseTokenizer loads the segmentation dictionary. An empty dictFiles
// loads the embedded default dictionary; otherwise it is a comma-separated
// list of dictionary files.
func NewGseTokenizer(dictFiles string) (*GseTokenizer, error) {
	var (
		seg gse.Segmenter
		err error
	)
	if dictFiles == "" {
		seg, err = gse.New()
	} else {
		seg, err = gse.New(dictFiles)
	}
	if err != nil {
		return nil, eris.Wrap(err, "lexicon: load segmentation dictionary")
	}
	return &GseTokenizer{seg: seg}, nil
}

// Tokenize implements Tokenizer.
func (t *GseTokenizer) Tokenize(text string) Set {
	return tokenSet(t.seg.Cut(text, true))
}

// DictTokenizer segments text by forward maximum matching against a fixed
// vocabulary. Runs of Han characters are matched against the vocabulary
// (unmatched characters become single-character tokens); runs of other
// letters and digits are whole-word tokens.
type DictTokenizer struct {
	vocab  Set
	maxLen int
}

// NewDictTokenizer builds a DictTokenizer over the given word lists.
func NewDictTokenizer(words ...[]string) *DictTokenizer {
	vocab := newSet(words...)
	maxLen := 1
	for w := range vocab {
		if n := utf8.RuneCountInString(w); n > maxLen {
			maxLen = n
		}
	}
	return &DictTokenizer{vocab: vocab, maxLen: maxLen}
}

// DictTokenizer returns a DictTokenizer whose vocabulary is every keyword in
// the lexicon.
func (l *Lexicon) DictTokenizer() *DictTokenizer {
	return NewDictTokenizer(l.Words(AllNegative), l.Words(Positive))
}

// Tokenize implements Tokenizer.
func (t *DictTokenizer) Tokenize(text string) Set {
	runes := []rune(text)
	var tokens []string

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.Is(unicode.Han, r):
			end := i + 1
			for end < len(runes) && unicode.Is(unicode.Han, runes[end]) {
				end++
			}
			tokens = t.matchHan(runes[i:end], tokens)
			i = end
		case isWordRune(r):
			end := i + 1
			for end < len(runes) && isWordRune(runes[end]) && !unicode.Is(unicode.Han, runes[end]) {
				end++
			}
			tokens = append(tokens, string(runes[i:end]))
			i = end
		default:
			i++
		}
	}
	return tokenSet(tokens)
}

func (t *DictTokenizer) matchHan(run []rune, tokens []string) []string {
	for i := 0; i < len(run); {
		n := t.maxLen
		if rest := len(run) - i; n > rest {
			n = rest
		}
		matched := false
		for ; n > 1; n-- {
			if w := string(run[i : i+n]); t.vocab.Has(w) {
				tokens = append(tokens, w)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			tokens = append(tokens, string(run[i]))
			i++
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenSet collects distinct non-blank tokens that contain at least one
// letter or digit.
func tokenSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		s[tok] = struct{}{}
	}
	return s
}
