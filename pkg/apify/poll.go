package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/resilience"
)

const (
	defaultPollInterval = 15 * time.Second
	defaultPollTimeout  = 10 * time.Minute
)

// RunError reports a run that stopped in a status other than SUCCEEDED.
type RunError struct {
	RunID  string
	Status string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("apify: run %s finished with status %s", e.RunID, e.Status)
}

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	timeout  time.Duration
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
	}
}

// WithPollInterval overrides the delay between status checks.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithPollTimeout overrides the default timeout (applied only if the parent
// context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// PollRun polls GetRun until the run reaches a terminal status or the context
// expires. A run that ends in anything but SUCCEEDED yields a *RunError.
// Transient status-check failures are logged and polling continues.
func PollRun(ctx context.Context, client Client, actorID, runID string, opts ...PollOption) (*Run, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	for {
		run, err := client.GetRun(ctx, actorID, runID)
		switch {
		case err == nil:
			zap.L().Debug("apify: run status", zap.String("run_id", runID), zap.String("status", run.Status))
			if run.Terminal() {
				if run.Status != StatusSucceeded {
					return nil, &RunError{RunID: runID, Status: run.Status}
				}
				return run, nil
			}
		case ctx.Err() == nil && resilience.IsTransient(err):
			zap.L().Warn("apify: status check failed, will retry",
				zap.String("run_id", runID), zap.Error(err))
		default:
			return nil, eris.Wrapf(err, "apify: poll run %s", runID)
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrapf(ctx.Err(), "apify: poll run %s timed out", runID)
		case <-time.After(cfg.interval):
		}
	}
}

// StartURL is one entry of an actor's startUrls input.
type StartURL struct {
	URL string `json:"url"`
}

// PlaceReviewsInput is the input of the Google Maps reviews actor.
type PlaceReviewsInput struct {
	StartURLs  []StartURL `json:"startUrls"`
	MaxReviews int        `json:"maxReviews"`
	Language   string     `json:"language"`
}

// PlaceURL is the Maps search URL the actor resolves a place id from.
func PlaceURL(placeID string) string {
	return "https://www.google.com/maps/search/?api=1&query=a&query_place_id=" + placeID
}

// NewPlaceReviewsInput builds actor input for one place.
func NewPlaceReviewsInput(placeID string, maxReviews int, language string) PlaceReviewsInput {
	return PlaceReviewsInput{
		StartURLs:  []StartURL{{URL: PlaceURL(placeID)}},
		MaxReviews: maxReviews,
		Language:   language,
	}
}

// RunActor starts actorID with input, waits for it to succeed and returns the
// raw dataset items.
func RunActor(ctx context.Context, client Client, actorID string, input any, opts ...PollOption) (json.RawMessage, error) {
	run, err := client.StartRun(ctx, actorID, input)
	if err != nil {
		return nil, err
	}
	zap.L().Info("apify: run started", zap.String("actor", actorID), zap.String("run_id", run.ID))

	done, err := PollRun(ctx, client, actorID, run.ID, opts...)
	if err != nil {
		return nil, err
	}

	datasetID := done.DefaultDatasetID
	if datasetID == "" {
		datasetID = run.DefaultDatasetID
	}
	if datasetID == "" {
		return nil, eris.Errorf("apify: run %s has no dataset", run.ID)
	}

	items, err := client.DatasetItems(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("apify: dataset downloaded",
		zap.String("run_id", run.ID), zap.Int("bytes", len(items)))
	return items, nil
}
