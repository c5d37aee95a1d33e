// Package analyze serves venue risk reports: it reads venues through the
// store, scrapes them on a miss and scores them with the pipeline.
package analyze

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/review-risk/internal/model"
	"github.com/sells-group/review-risk/internal/pipeline"
	"github.com/sells-group/review-risk/internal/store"
	"github.com/sells-group/review-risk/pkg/google"
)

// MinQueryLength is the shortest accepted search query, in characters.
const MinQueryLength = 2

// DefaultAcquireTimeout bounds one shared scrape.
const DefaultAcquireTimeout = 15 * time.Minute

// Candidate is a venue returned by search.
type Candidate struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	PlaceID string `json:"place_id"`
}

// Service produces reports for places. It is safe for concurrent use.
type Service struct {
	store    store.Store
	fetcher  Fetcher
	pipeline *pipeline.Pipeline
	places   google.Client

	acquireTimeout time.Duration
	inflight       singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithSearch enables venue search through Google Places.
func WithSearch(c google.Client) Option {
	return func(s *Service) { s.places = c }
}

// WithAcquireTimeout bounds a scrape independently of the requests waiting
// on it.
func WithAcquireTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.acquireTimeout = d
		}
	}
}

// NewService creates a Service. st may be nil, in which case Analyze
// reports ErrStoreUnavailable.
func NewService(st store.Store, f Fetcher, p *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{store: st, fetcher: f, pipeline: p, acquireTimeout: DefaultAcquireTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze returns the report for placeID. Cached venues are scored without
// scraping; refresh forces a new scrape.
func (s *Service) Analyze(ctx context.Context, placeID string, refresh bool) (*pipeline.Report, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, ErrInvalidPlaceID
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	log := zap.L().With(zap.String("place_id", placeID))

	var place *model.PlaceInfo
	if !refresh {
		cached, err := s.store.GetPlace(ctx, placeID)
		if err != nil {
			return nil, &StoreError{Op: "get place", Err: err}
		}
		place = cached
	}

	if place != nil {
		log.Info("analyze: cache hit", zap.Int("reviews", len(place.Reviews)))
	} else {
		log.Info("analyze: cache miss, scraping")
		fetched, err := s.acquire(ctx, placeID)
		if err != nil {
			return nil, err
		}
		place = fetched
	}

	res, err := s.pipeline.RunPlace(ctx, *place)
	if err != nil {
		return nil, err
	}
	if place.PlaceID == "" {
		place.PlaceID = placeID
	}
	report := pipeline.BuildReport(*place, res)
	return &report, nil
}

// acquire scrapes and caches a place. Concurrent requests for the same place
// share one scrape, which runs detached from any single caller: a caller
// that gives up returns its context error while the scrape continues for
// the others.
func (s *Service) acquire(ctx context.Context, placeID string) (*model.PlaceInfo, error) {
	ch := s.inflight.DoChan(placeID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.acquireTimeout)
		defer cancel()

		place, err := s.fetcher.FetchPlace(fetchCtx, placeID)
		if err != nil {
			return nil, &AcquisitionError{PlaceID: placeID, Err: err}
		}
		if err := s.store.SavePlace(fetchCtx, placeID, *place); err != nil {
			// Still scored; the next request for this place rescrapes.
			zap.L().Error("analyze: cache write failed",
				zap.String("place_id", placeID), zap.Error(err))
		}
		return place, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			zap.L().Debug("analyze: shared in-flight scrape", zap.String("place_id", placeID))
		}
		place := *r.Val.(*model.PlaceInfo)
		return &place, nil
	}
}

// Search looks up venue candidates by free text.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	if s.places == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	resp, err := s.places.TextSearch(ctx, query)
	if err != nil {
		return nil, &UpstreamError{Service: "places search", Err: err}
	}

	out := make([]Candidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		out = append(out, Candidate{
			Name:    p.DisplayName.Text,
			Address: p.FormattedAddress,
			PlaceID: p.ID,
		})
	}
	zap.L().Info("analyze: search", zap.String("query", query), zap.Int("candidates", len(out)))
	return out, nil
}
