// Package model defines the review, venue and score types shared across the
// scoring pipeline.
package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// RawReview is a review record as delivered by the scraper. Its shape is not
// trusted: required keys are validated during normalization and unknown keys
// are carried along untouched.
type RawReview map[string]any

// Distribution maps a star bucket name ("oneStar" .. "fiveStar") to a count.
type Distribution map[string]int

// Star bucket keys used in Distribution.
const (
	OneStar   = "oneStar"
	TwoStar   = "twoStar"
	ThreeStar = "threeStar"
	FourStar  = "fourStar"
	FiveStar  = "fiveStar"
)

// Count returns the count for a bucket, zero when absent.
func (d Distribution) Count(bucket string) int {
	if d == nil {
		return 0
	}
	return d[bucket]
}

// PlaceInfo is a venue document with its reviews, in the scraper's layout.
type PlaceInfo struct {
	PlaceID             string       `json:"placeId,omitempty"`
	Title               string       `json:"title,omitempty"`
	TotalScore          *float64     `json:"totalScore,omitempty"`
	ReviewsCount        int          `json:"reviewsCount"`
	ReviewsDistribution Distribution `json:"reviewsDistribution,omitempty"`
	Reviews             []RawReview  `json:"reviews,omitempty"`
}

// Metadata returns the venue-level aggregates declared by the source.
func (p PlaceInfo) Metadata() VenueMetadata {
	return VenueMetadata{
		DeclaredTotalRating:  p.TotalScore,
		DeclaredReviewCount:  p.ReviewsCount,
		DeclaredDistribution: p.ReviewsDistribution,
	}
}

// VenueMetadata holds venue-level aggregates that are independent of the
// sampled review set.
type VenueMetadata struct {
	DeclaredTotalRating  *float64
	DeclaredReviewCount  int
	DeclaredDistribution Distribution
}

// DecodePlaces parses a scraper dataset, which is either a single place
// object or an array of them.
func DecodePlaces(data []byte) ([]PlaceInfo, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var places []PlaceInfo
		if err := json.Unmarshal(trimmed, &places); err != nil {
			return nil, eris.Wrap(err, "model: decode places")
		}
		return places, nil
	}
	var p PlaceInfo
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, eris.Wrap(err, "model: decode places")
	}
	return []PlaceInfo{p}, nil
}

// NormalizedReview is a validated review with canonical fields.
type NormalizedReview struct {
	Rating      int       `json:"rating"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
}

// ClassifiedReview is a NormalizedReview with derived features attached.
type ClassifiedReview struct {
	NormalizedReview
	IsNegative      bool    `json:"is_negative"`
	IsLong          bool    `json:"is_long"`
	HighRiskCount   int     `json:"high_risk_keyword_count"`
	MediumRiskCount int     `json:"medium_risk_keyword_count"`
	LowRiskCount    int     `json:"low_risk_keyword_count"`
	Sentiment       float64 `json:"sentiment_score"`
	// HasSentiment is false when no sentiment scorer was configured, as
	// opposed to a scorer that returned neutral.
	HasSentiment bool `json:"-"`
}
