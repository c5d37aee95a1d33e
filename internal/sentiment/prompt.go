package sentiment

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const systemPrompt = `You classify the sentiment of a single customer review of a venue. Respond with only a JSON object: {"sentiment": "positive" | "neutral" | "negative", "confidence": <0.0-1.0>}. Confidence is how sure you are of the chosen sentiment.`

const userPromptFormat = `Review language: %s

Review:
%s`

// languageName renders a BCP 47 tag as an English language name, falling
// back to the tag itself.
func languageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return t.String()
}

func userPrompt(text, lang string) string {
	return fmt.Sprintf(userPromptFormat, languageName(lang), text)
}

// Verdict is the model's answer.
type Verdict struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// Score maps the verdict onto [-1, 1]: positive is +confidence, negative is
// -confidence, anything else is 0.
func (v Verdict) Score() float64 {
	c := math.Max(0, math.Min(1, v.Confidence))
	switch strings.ToLower(strings.TrimSpace(v.Sentiment)) {
	case "positive":
		return c
	case "negative":
		return -c
	default:
		return 0
	}
}

// ParseVerdict extracts the JSON verdict from a model reply, tolerating
// surrounding prose or code fences.
func ParseVerdict(reply string) (float64, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return 0, eris.Errorf("sentiment: no JSON object in reply %q", truncate(reply, 80))
	}
	var v Verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return 0, eris.Wrap(err, "sentiment: decode verdict")
	}
	if math.IsNaN(v.Confidence) {
		return 0, eris.New("sentiment: confidence is NaN")
	}
	return v.Score(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
