package proxy

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// BenchDuration is how long a failed proxy is skipped
const BenchDuration = 5 * time.Minute

// Pool rotates over a list of proxies, skipping recently failed ones
type Pool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
	now     func() time.Time
}

// NewPool creates a new Pool
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// Next returns the next healthy proxy from the pool.
// When every proxy is benched the next one in rotation is returned anyway.
func (p *Pool) Next() string {
	if p == nil {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for tries := 0; tries < len(p.proxies); tries++ {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failTime, ok := p.failed[proxy]
		if !ok {
			return proxy
		}
		if p.now().Sub(failTime) >= BenchDuration {
			delete(p.failed, proxy)
			return proxy
		}
	}

	proxy := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return proxy
}

// MarkFailed benches a proxy for BenchDuration
func (p *Pool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

type ctxKey struct{}

// WithProxy records the proxy chosen for a request
func WithProxy(ctx context.Context, proxy string) context.Context {
	if proxy == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, proxy)
}

// FromContext returns the proxy chosen for a request, if any
func FromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// ProxyFunc is an http.Transport Proxy function that honours the proxy stored
// in the request context and falls back to the environment settings.
func ProxyFunc(req *http.Request) (*url.URL, error) {
	if p := FromContext(req.Context()); p != "" {
		return url.Parse(p)
	}
	return http.ProxyFromEnvironment(req)
}
