package analyze

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-risk/internal/config"
	"github.com/sells-group/review-risk/internal/model"
	"github.com/sells-group/review-risk/pkg/apify"
)

// Fetcher scrapes a venue and its reviews.
type Fetcher interface {
	FetchPlace(ctx context.Context, placeID string) (*model.PlaceInfo, error)
}

// ApifyFetcher scrapes venues with the Google Maps reviews actor.
type ApifyFetcher struct {
	client     apify.Client
	actorID    string
	maxReviews int
	language   string
	pollOpts   []apify.PollOption
}

// NewApifyFetcher creates a fetcher from the apify settings.
func NewApifyFetcher(client apify.Client, cfg config.ApifyConfig) *ApifyFetcher {
	return &ApifyFetcher{
		client:     client,
		actorID:    cfg.ActorID,
		maxReviews: cfg.MaxReviews,
		language:   cfg.Language,
		pollOpts: []apify.PollOption{
			apify.WithPollInterval(time.Duration(cfg.PollIntervalSec) * time.Second),
			apify.WithPollTimeout(time.Duration(cfg.TimeoutMins) * time.Minute),
		},
	}
}

// FetchPlace runs the actor for one place and returns the first dataset item.
func (f *ApifyFetcher) FetchPlace(ctx context.Context, placeID string) (*model.PlaceInfo, error) {
	input := apify.NewPlaceReviewsInput(placeID, f.maxReviews, f.language)
	items, err := apify.RunActor(ctx, f.client, f.actorID, input, f.pollOpts...)
	if err != nil {
		return nil, err
	}

	places, err := model.DecodePlaces(items)
	if err != nil {
		return nil, eris.Wrap(err, "decode dataset")
	}
	if len(places) == 0 {
		return nil, eris.New("dataset is empty")
	}

	place := places[0]
	if place.PlaceID == "" {
		place.PlaceID = placeID
	}
	return &place, nil
}
