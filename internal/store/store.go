// Package store persists scraped venues and their raw reviews so repeat
// analyses of the same place skip the scraper.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-risk/internal/model"
)

// Store defines the persistence interface for the venue cache.
type Store interface {
	// GetPlace returns the cached venue with its reviews, or nil when the
	// place has never been saved.
	GetPlace(ctx context.Context, placeID string) (*model.PlaceInfo, error)
	// SavePlace stores the venue and replaces any reviews saved before.
	SavePlace(ctx context.Context, placeID string, place model.PlaceInfo) error

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// placeDoc is the venue document without its reviews.
type placeDoc struct {
	Title               string             `json:"title,omitempty"`
	TotalScore          *float64           `json:"totalScore,omitempty"`
	ReviewsCount        int                `json:"reviewsCount"`
	ReviewsDistribution model.Distribution `json:"reviewsDistribution,omitempty"`
}

func encodePlace(p model.PlaceInfo) ([]byte, error) {
	return json.Marshal(placeDoc{
		Title:               p.Title,
		TotalScore:          p.TotalScore,
		ReviewsCount:        p.ReviewsCount,
		ReviewsDistribution: p.ReviewsDistribution,
	})
}

func decodePlace(placeID string, doc []byte) (*model.PlaceInfo, error) {
	var d placeDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, eris.Wrapf(err, "decode place %s", placeID)
	}
	return &model.PlaceInfo{
		PlaceID:             placeID,
		Title:               d.Title,
		TotalScore:          d.TotalScore,
		ReviewsCount:        d.ReviewsCount,
		ReviewsDistribution: d.ReviewsDistribution,
		Reviews:             []model.RawReview{},
	}, nil
}

func decodeReview(data []byte) (model.RawReview, error) {
	var r model.RawReview
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "decode review")
	}
	return r, nil
}

// reviewRow is one review prepared for insertion.
type reviewRow struct {
	id       string
	position int
	data     []byte
}

func encodeReviews(reviews []model.RawReview, newID func() string) ([]reviewRow, error) {
	rows := make([]reviewRow, 0, len(reviews))
	for i, r := range reviews {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, eris.Wrapf(err, "encode review %d", i)
		}
		rows = append(rows, reviewRow{id: newID(), position: i, data: data})
	}
	return rows, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
