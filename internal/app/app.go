// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/internal/auth"
	"github.com/uaenergy/news/internal/cache"
	"github.com/uaenergy/news/internal/config"
	"github.com/uaenergy/news/internal/engine"
	"github.com/uaenergy/news/internal/llm"
	"github.com/uaenergy/news/internal/proxy"
	"github.com/uaenergy/news/internal/ratelimit"
	"github.com/uaenergy/news/internal/retry"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter *ratelimit.DomainLimiter
	HTTPClient  *http.Client
	Proxies     *proxy.Pool
	Fetcher     *engine.Fetcher
	Scraper     *engine.Scraper

	llmMu     sync.Mutex
	llmClient *llm.Client
	secrets   func() (*auth.Store, error)
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the in-memory page cache
//   - Creates the per-host rate limiter, with its own budget for the OpenAI API
//   - Initializes the HTTP client, routed through the proxy pool when proxies are set
//   - Creates the fetcher and the news scraper
//
// The OpenAI client is created on first use so that scraping works without
// an API key.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg, os.Stderr)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Dur("ttl", cfg.CacheTTL).
		Msg("Memory cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	rateLimiter.SetLimit(cfg.OpenAIBaseURL, cfg.OpenAIRPS, 1)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Float64("openai_rps", cfg.OpenAIRPS).
		Msg("Rate limiter initialized")

	proxies := proxy.NewPool(cfg.Proxies)
	if proxies.Len() > 0 {
		logger.Debug().Int("proxies", proxies.Len()).Msg("Proxy pool initialized")
	}
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			// per-request proxy chosen by the fetcher, else the environment
			Proxy:               proxy.ProxyFunc,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryAttempts

	fetcher := engine.NewFetcher(engine.FetcherOptions{
		Cache:     memCache,
		Limiter:   rateLimiter,
		Client:    httpClient,
		Proxies:   proxies,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		CacheTTL:  cfg.CacheTTL,
		Retry:     retryCfg,
	})
	scraper := engine.NewScraper(fetcher, engine.Site{Base: cfg.SiteURL}, cfg.Concurrency)
	logger.Debug().
		Str("site", cfg.SiteURL).
		Int("concurrency", cfg.Concurrency).
		Msg("Scraper initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Proxies:     proxies,
		Fetcher:     fetcher,
		Scraper:     scraper,
		secrets:     auth.DefaultStore,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	var level zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	// "info" stays quiet so log lines do not break the progress bar
	default:
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// APIKey returns the configured OpenAI API key, falling back to the key
// stored with "uaenergy key set".
func (a *Application) APIKey() (string, error) {
	if a.Config.OpenAIAPIKey != "" {
		return a.Config.OpenAIAPIKey, nil
	}
	store, err := a.secrets()
	if err != nil {
		return "", err
	}
	key, err := store.Get(auth.OpenAIKeyName)
	if errors.Is(err, auth.ErrNotFound) {
		return "", fmt.Errorf("%w: set OPENAI_API_KEY or run \"uaenergy key set\"", llm.ErrNoAPIKey)
	}
	return key, err
}

// LLM returns the OpenAI client, creating it on first use
func (a *Application) LLM() (*llm.Client, error) {
	a.llmMu.Lock()
	defer a.llmMu.Unlock()

	if a.llmClient != nil {
		return a.llmClient, nil
	}

	key, err := a.APIKey()
	if err != nil {
		return nil, err
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = a.Config.RetryAttempts

	client, err := llm.NewClient(llm.Options{
		APIKey:  key,
		BaseURL: a.Config.OpenAIBaseURL,
		Model:   a.Config.OpenAIModel,
		Seed:    a.Config.OpenAISeed,
		HTTPClient: &http.Client{
			Timeout:   a.Config.OpenAITimeout,
			Transport: a.HTTPClient.Transport,
		},
		Limiter: a.RateLimiter,
		Retry:   retryCfg,
	})
	if err != nil {
		return nil, err
	}

	a.Logger.Debug().
		Str("model", client.Model()).
		Str("base_url", a.Config.OpenAIBaseURL).
		Msg("OpenAI client initialized")
	a.llmClient = client
	return client, nil
}

// Close gracefully shuts down the application and all its resources.
//
// It closes the cache and the idle HTTP connections. Errors are logged
// but do not prevent the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.Cache != nil {
		if mc, ok := a.Cache.(*cache.MemoryCache); ok {
			stats := mc.Stats()
			a.Logger.Debug().
				Uint64("hits", stats.Hits).
				Uint64("misses", stats.Misses).
				Int("entries", stats.Entries).
				Msg("Page cache statistics")
		}
		a.Cache.Close()
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
