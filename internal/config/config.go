package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Lexicon   LexiconConfig   `yaml:"lexicon" mapstructure:"lexicon"`
	Features  FeaturesConfig  `yaml:"features" mapstructure:"features"`
	Scorer    ScorerConfig    `yaml:"scorer" mapstructure:"scorer"`
	Sentiment SentimentConfig `yaml:"sentiment" mapstructure:"sentiment"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LexiconConfig points at the keyword lexicon document.
type LexiconConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	// Tokenizer is "gse" (dictionary word segmentation) or "lexicon"
	// (maximum matching against the lexicon vocabulary only).
	Tokenizer string `yaml:"tokenizer" mapstructure:"tokenizer"`
	DictFiles string `yaml:"dict_files" mapstructure:"dict_files"`
}

// FeaturesConfig configures per-review feature extraction.
type FeaturesConfig struct {
	LongReviewChars    int `yaml:"long_review_chars" mapstructure:"long_review_chars"`
	RecentWindowDays   int `yaml:"recent_window_days" mapstructure:"recent_window_days"`
	MinRecentReviews   int `yaml:"min_recent_reviews" mapstructure:"min_recent_reviews"`
	MaxNegativePhrases int `yaml:"max_negative_phrases" mapstructure:"max_negative_phrases"`
	MaxPositivePhrases int `yaml:"max_positive_phrases" mapstructure:"max_positive_phrases"`
	Concurrency        int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ScorerConfig holds factor weights and tier thresholds for the risk model.
// Weights are applied as-is; they are not normalized to sum to 1.
type ScorerConfig struct {
	NegativeReviewsWeight float64 `yaml:"negative_reviews_weight" mapstructure:"negative_reviews_weight"`
	KeywordsWeight        float64 `yaml:"keywords_weight" mapstructure:"keywords_weight"`
	TrendWeight           float64 `yaml:"trend_weight" mapstructure:"trend_weight"`
	SentimentWeight       float64 `yaml:"sentiment_weight" mapstructure:"sentiment_weight"`

	// SummaryThreshold is the sub-score a factor must exceed to be named
	// in the summary.
	SummaryThreshold float64 `yaml:"summary_threshold" mapstructure:"summary_threshold"`
	MediumRiskAbove  float64 `yaml:"medium_risk_above" mapstructure:"medium_risk_above"`
	HighRiskAbove    float64 `yaml:"high_risk_above" mapstructure:"high_risk_above"`
}

// SentimentConfig configures the external sentiment collaborator.
type SentimentConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"`
	Key              string  `yaml:"key" mapstructure:"key"`
	Model            string  `yaml:"model" mapstructure:"model"`
	Language         string  `yaml:"language" mapstructure:"language"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	CacheURL         string  `yaml:"cache_url" mapstructure:"cache_url"`
	CacheTTLHours    int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ApifyConfig holds settings for the review scraping actor.
type ApifyConfig struct {
	Token           string `yaml:"token" mapstructure:"token"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	ActorID         string `yaml:"actor_id" mapstructure:"actor_id"`
	MaxReviews      int    `yaml:"max_reviews" mapstructure:"max_reviews"`
	Language        string `yaml:"language" mapstructure:"language"`
	PollIntervalSec int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	TimeoutMins     int    `yaml:"timeout_mins" mapstructure:"timeout_mins"`
}

// GoogleConfig holds Google Places settings for venue search.
type GoogleConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Language string `yaml:"language" mapstructure:"language"`
}

// StoreConfig configures the venue cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REVIEWRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("lexicon.path", "data/keywords.json")
	v.SetDefault("lexicon.tokenizer", "gse")
	v.SetDefault("lexicon.dict_files", "")
	v.SetDefault("features.long_review_chars", 100)
	v.SetDefault("features.recent_window_days", 90)
	v.SetDefault("features.min_recent_reviews", 5)
	v.SetDefault("features.max_negative_phrases", 3)
	v.SetDefault("features.max_positive_phrases", 2)
	v.SetDefault("features.concurrency", 8)
	v.SetDefault("scorer.negative_reviews_weight", 0.25)
	v.SetDefault("scorer.keywords_weight", 0.45)
	v.SetDefault("scorer.trend_weight", 0.15)
	v.SetDefault("scorer.sentiment_weight", 0.15)
	v.SetDefault("scorer.summary_threshold", 20)
	v.SetDefault("scorer.medium_risk_above", 40)
	v.SetDefault("scorer.high_risk_above", 70)
	v.SetDefault("sentiment.provider", "anthropic")
	v.SetDefault("sentiment.model", "claude-haiku-4-5-20251001")
	v.SetDefault("sentiment.language", "zh-Hant")
	v.SetDefault("sentiment.timeout_secs", 10)
	v.SetDefault("sentiment.rate_limit", 5)
	v.SetDefault("sentiment.max_attempts", 3)
	v.SetDefault("sentiment.failure_threshold", 5)
	v.SetDefault("sentiment.reset_timeout_secs", 30)
	v.SetDefault("sentiment.cache_ttl_hours", 168)
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.actor_id", "compass~crawler-google-places")
	v.SetDefault("apify.max_reviews", 50)
	v.SetDefault("apify.language", "zh-TW")
	v.SetDefault("apify.poll_interval_secs", 15)
	v.SetDefault("apify.timeout_mins", 10)
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.language", "zh-TW")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "review-risk.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings required by the given mode are present
// and within bounds. Modes: "serve", "analyze", "score", "lexicon".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "analyze":
		if c.Apify.Token == "" {
			errs = append(errs, "apify.token is required")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "score", "lexicon":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Features.Concurrency < 1 || c.Features.Concurrency > 64 {
		errs = append(errs, "features.concurrency must be between 1 and 64")
	}
	if c.Features.MinRecentReviews < 0 {
		errs = append(errs, "features.min_recent_reviews must be >= 0")
	}
	if c.Features.RecentWindowDays <= 0 {
		errs = append(errs, "features.recent_window_days must be > 0")
	}
	if c.Features.MaxNegativePhrases < 0 || c.Features.MaxPositivePhrases < 0 {
		errs = append(errs, "features phrase quotas must be >= 0")
	}
	switch c.Lexicon.Tokenizer {
	case "gse", "lexicon":
	default:
		errs = append(errs, "lexicon.tokenizer must be gse or lexicon")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
