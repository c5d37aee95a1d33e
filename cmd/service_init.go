package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/analyze"
	"github.com/sells-group/review-risk/internal/store"
	"github.com/sells-group/review-risk/pkg/apify"
	"github.com/sells-group/review-risk/pkg/google"
)

// serviceEnv extends pipelineEnv with the venue cache and scraper.
type serviceEnv struct {
	*pipelineEnv
	Store   store.Store
	Service *analyze.Service
}

// Close releases the store and the pipeline resources.
func (se *serviceEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
	se.pipelineEnv.Close()
}

// initService opens the store and builds the analyze service on top of the
// scoring pipeline. Callers should defer env.Close().
func initService(ctx context.Context, mode string) (*serviceEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	penv, err := initPipeline(ctx)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		penv.Close()
		return nil, err
	}

	apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))
	fetcher := analyze.NewApifyFetcher(apifyClient, cfg.Apify)

	var opts []analyze.Option
	if cfg.Google.Key != "" {
		opts = append(opts, analyze.WithSearch(google.NewClient(cfg.Google.Key,
			google.WithBaseURL(cfg.Google.BaseURL),
			google.WithLanguage(cfg.Google.Language),
		)))
		zap.L().Info("google places search enabled")
	} else {
		zap.L().Debug("REVIEWRISK_GOOGLE_KEY not set, venue search disabled")
	}

	return &serviceEnv{
		pipelineEnv: penv,
		Store:       st,
		Service:     analyze.NewService(st, fetcher, penv.Pipeline, opts...),
	}, nil
}
