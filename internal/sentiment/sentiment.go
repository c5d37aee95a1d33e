// Package sentiment scores review text in [-1, 1] with a language model.
// Scoring is best effort: every failure degrades to a neutral 0.
package sentiment

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/review-risk/internal/resilience"
	"github.com/sells-group/review-risk/pkg/anthropic"
)

// ErrUnavailable matches every scoring failure.
var ErrUnavailable = eris.New("sentiment: unavailable")

type unavailableError struct{ err error }

func (e *unavailableError) Error() string        { return "sentiment: unavailable: " + e.err.Error() }
func (e *unavailableError) Unwrap() error        { return e.err }
func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func unavailable(err error) error { return &unavailableError{err: err} }

// Disabled is the scorer used when no provider is configured.
type Disabled struct{}

// ScoreText always returns 0.
func (Disabled) ScoreText(context.Context, string, string) float64 { return 0 }

// Enabled reports false.
func (Disabled) Enabled() bool { return false }

// AnthropicScorer asks a Claude model for the polarity of a text.
type AnthropicScorer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
	policy    resilience.Policy
	breaker   *resilience.Breaker
	cache     Cache
	cacheTTL  time.Duration
}

// Option configures an AnthropicScorer.
type Option func(*AnthropicScorer)

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(s *AnthropicScorer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(s *AnthropicScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit caps calls per second across all goroutines. A
// non-positive rps removes the limit.
func WithRateLimit(rps float64) Option {
	return func(s *AnthropicScorer) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the per-text retry policy.
func WithRetry(p resilience.Policy) Option {
	return func(s *AnthropicScorer) { s.policy = p }
}

// WithCircuitBreaker stops calling the API after repeated transient
// failures until the cool-down passes.
func WithCircuitBreaker(b *resilience.Breaker) Option {
	return func(s *AnthropicScorer) { s.breaker = b }
}

// WithCache stores scores so identical texts are scored once.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *AnthropicScorer) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewAnthropicScorer creates a scorer over client.
func NewAnthropicScorer(client anthropic.Client, opts ...Option) *AnthropicScorer {
	s := &AnthropicScorer{
		client:    client,
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 64,
		timeout:   10 * time.Second,
		limiter:   rate.NewLimiter(5, 5),
		policy:    resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.OnRetry == nil {
		s.policy.OnRetry = resilience.LogRetry("anthropic", "sentiment")
	}
	if s.breaker == nil {
		s.breaker = resilience.NewBreaker(resilience.BreakerSettings{
			Name:   "sentiment",
			Counts: resilience.IsTransient,
		})
	}
	return s
}

// ScoreText implements features.SentimentScorer. Failures are logged and
// scored as 0.
func (s *AnthropicScorer) ScoreText(ctx context.Context, text, language string) float64 {
	v, err := s.Score(ctx, text, language)
	if err != nil {
		zap.L().Warn("sentiment: scoring failed, using neutral",
			zap.Int("text_len", len(text)),
			zap.Error(err),
		)
		return 0
	}
	return v
}

// Score returns the polarity of text. Errors match ErrUnavailable.
func (s *AnthropicScorer) Score(ctx context.Context, text, language string) (float64, error) {
	if text == "" {
		return 0, nil
	}

	key := CacheKey(language, text)
	if s.cache != nil {
		if v, ok, err := s.cache.Get(ctx, key); err != nil {
			zap.L().Debug("sentiment: cache read failed", zap.Error(err))
		} else if ok {
			return v, nil
		}
	}

	v, err := resilience.Call(ctx, s.breaker, func(ctx context.Context) (float64, error) {
		return resilience.RetryValue(ctx, s.policy, func(ctx context.Context) (float64, error) {
			return s.call(ctx, text, language)
		})
	})
	if err != nil {
		return 0, unavailable(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
			zap.L().Debug("sentiment: cache write failed", zap.Error(err))
		}
	}
	return v, nil
}

func (s *AnthropicScorer) call(ctx context.Context, text, language string) (float64, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "sentiment: rate limit wait")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	temp := 0.0
	resp, err := s.client.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt(text, language)}},
		Temperature: &temp,
	})
	if err != nil {
		return 0, err
	}
	return ParseVerdict(resp.Text())
}
