// internal/engine/fetcher.go
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/uaenergy/news/internal/cache"
	"github.com/uaenergy/news/internal/proxy"
	"github.com/uaenergy/news/internal/ratelimit"
	"github.com/uaenergy/news/internal/retry"
	"github.com/uaenergy/news/internal/utils/headers"
	urlutil "github.com/uaenergy/news/internal/utils/url"
)

// maxBodySize caps a single page download
const maxBodySize = 10 * 1024 * 1024

// PageFetcher retrieves and parses HTML pages
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Fetcher downloads pages over plain HTTP and parses them with goquery.
// Requests are rate limited per host, retried on transient failures, and
// successful bodies are kept in the page cache.
type Fetcher struct {
	cache     cache.Cache
	limiter   ratelimit.RateLimiter
	client    *http.Client
	proxies   *proxy.Pool
	userAgent string
	headers   http.Header
	cacheTTL  time.Duration
	retry     retry.Config
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Cache     cache.Cache
	Limiter   ratelimit.RateLimiter
	Client    *http.Client
	Proxies   *proxy.Pool
	UserAgent string
	Headers   http.Header
	CacheTTL  time.Duration
	Retry     retry.Config
}

// NewFetcher creates a Fetcher with dependency injection
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	return &Fetcher{
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		client:    opts.Client,
		proxies:   opts.Proxies,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		cacheTTL:  opts.CacheTTL,
		retry:     opts.Retry,
	}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return "StaticFetcher"
}

// Fetch retrieves a page and parses it into a goquery document
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.FetchBody(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, NewEngineError(ErrCodeParseError, "failed to parse HTML", err).WithDetail("url", url)
	}
	return doc, nil
}

// FetchBody retrieves the UTF-8 body of a page, consulting the cache first
func (f *Fetcher) FetchBody(ctx context.Context, url string) ([]byte, error) {
	if err := urlutil.ValidateURL(url); err != nil {
		return nil, NewEngineError(ErrCodeValidation, "refusing to fetch", fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}

	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			return body, nil
		}
	}

	var body []byte
	err := retry.WithRetry(ctx, f.retry, func() error {
		var err error
		body, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		_ = f.cache.Set(url, body, f.cacheTTL)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	p := f.proxies.Next()
	req, err := http.NewRequestWithContext(proxy.WithProxy(ctx, p), http.MethodGet, url, nil)
	if err != nil {
		return nil, NewEngineError(ErrCodeValidation, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "uk-UA,uk;q=0.9,en;q=0.5")
	headers.Apply(req, f.headers)

	resp, err := f.client.Do(req)
	if err != nil {
		// a cancelled run says nothing about the proxy
		if ctx.Err() == nil {
			f.proxies.MarkFailed(p)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewEngineError(ErrCodeTimeout, "request timed out", err).WithRetry()
		}
		return nil, NewEngineError(ErrCodeNetworkError, "failed to fetch URL", fmt.Errorf("%w: %v", ErrNetworkError, err)).
			WithRetry().
			WithDetail("url", url)
	}
	defer resp.Body.Close()
	f.proxies.MarkHealthy(p)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, NewStatusError(url, resp)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, NewEngineError(ErrCodeParseError, "unsupported charset", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewEngineError(ErrCodeNetworkError, "failed to read body", err).WithRetry()
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Msg("Fetch completed")

	return body, nil
}
