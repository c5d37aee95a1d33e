// Package features turns raw review batches into classified reviews, a
// rating trend and representative quotes.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/review-risk/internal/model"
)

// Source field names of the scraper's review records.
const (
	FieldRating      = "stars"
	FieldText        = "text"
	FieldPublishedAt = "publishedAtDate"
)

var requiredFields = []string{FieldRating, FieldText, FieldPublishedAt}

// MissingFieldError rejects a review batch in which a record lacks a
// required field or carries a value that cannot be interpreted.
type MissingFieldError struct {
	Field  string
	Index  int
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("features: review %d: missing required field %q", e.Index, e.Field)
	}
	return fmt.Sprintf("features: review %d: invalid field %q: %s", e.Index, e.Field, e.Reason)
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize validates a raw batch and maps it to canonical reviews.
//
// A record without one of the required keys, or with a value of the wrong
// type, fails the whole batch with *MissingFieldError. Records whose
// required values are null, or whose trimmed text is empty, are dropped.
// An empty input yields an empty result and no error.
func Normalize(raw []model.RawReview) ([]model.NormalizedReview, error) {
	out := make([]model.NormalizedReview, 0, len(raw))

	for i, rec := range raw {
		for _, f := range requiredFields {
			if _, ok := rec[f]; !ok {
				return nil, &MissingFieldError{Field: f, Index: i}
			}
		}
		if rec[FieldRating] == nil || rec[FieldText] == nil || rec[FieldPublishedAt] == nil {
			continue
		}

		rating, err := parseRating(rec[FieldRating])
		if err != nil {
			return nil, &MissingFieldError{Field: FieldRating, Index: i, Reason: err.Error()}
		}

		text, ok := rec[FieldText].(string)
		if !ok {
			return nil, &MissingFieldError{Field: FieldText, Index: i, Reason: fmt.Sprintf("expected string, got %T", rec[FieldText])}
		}
		text = strings.TrimSpace(norm.NFC.String(text))

		published, err := parseTimestamp(rec[FieldPublishedAt])
		if err != nil {
			return nil, &MissingFieldError{Field: FieldPublishedAt, Index: i, Reason: err.Error()}
		}

		if text == "" {
			continue
		}

		out = append(out, model.NormalizedReview{
			Rating:      rating,
			Text:        text,
			PublishedAt: published,
		})
	}

	return out, nil
}

func parseRating(v any) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, eris.Wrap(err, "parse number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "parse %q", n)
		}
		f = parsed
	default:
		return 0, eris.Errorf("expected number, got %T", v)
	}

	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, eris.Errorf("rating %v is not a whole number", f)
	}
	if f < 1 || f > 5 {
		return 0, eris.Errorf("rating %v outside 1-5", f)
	}
	return int(f), nil
}

func parseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, eris.Errorf("expected timestamp string, got %T", v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("unparseable timestamp %q", s)
}
