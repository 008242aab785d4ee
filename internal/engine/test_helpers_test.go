package engine

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uaenergy/news/internal/cache"
	"github.com/uaenergy/news/internal/ratelimit"
	"github.com/uaenergy/news/internal/retry"
)

const newsPageTemplate = `<!DOCTYPE html>
<html>
<head><title>Новини</title></head>
<body>
<div class="wrap">
	<h1 class="title">Новини</h1>
	<div class="news">
		%s
	</div>
</div>
<div class="sidebar"><div class="article"><a href="/uk/posts/sidebar">Sidebar</a><span>1 січня 2020,</span><span>00:00</span></div></div>
</body>
</html>`

const articleCardTemplate = `<div class="article">
	<a href="%s">%s</a>
	<span>%s</span>
	<span>%s</span>
</div>`

const articlePageTemplate = `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<div class="col-lg-7 content-article content-article-inner">
	<p>Перший абзац про енергетику.</p>
	<p><strong>ЧИТАЙТЕ ТАКОЖ:</strong> <a href="/uk/posts/related">Пов'язана новина</a></p>
	<p>Другий абзац з <a href="%s/uk/posts/other">посиланням</a> і <a href="https://example.com/x">зовнішнім</a>.</p>
	<div class="tags"><a href="/uk/tags/1">газ</a><a href="/uk/tags/2">Нафтогаз</a></div>
</div>
</body>
</html>`

// portal is a fake news portal with per-path hit counters
type portal struct {
	server *httptest.Server
	hits   map[string]*int64
	pages  map[string]string
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	p := &portal{
		hits:  make(map[string]*int64),
		pages: make(map[string]string),
	}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if d := r.URL.Query().Get("date"); d != "" {
			key += "?date=" + d
		}
		if c, ok := p.hits[key]; ok {
			atomic.AddInt64(c, 1)
		}
		body, ok := p.pages[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(p.server.Close)
	return p
}

func (p *portal) add(key, body string) {
	p.pages[key] = body
	var n int64
	p.hits[key] = &n
}

func (p *portal) hitCount(key string) int64 {
	if c, ok := p.hits[key]; ok {
		return atomic.LoadInt64(c)
	}
	return 0
}

func (p *portal) addNewsDay(date string, cards ...string) {
	p.add("/uk/news?date="+date, fmt.Sprintf(newsPageTemplate, joinCards(cards)))
}

func (p *portal) addArticle(path, title string) {
	p.add(path, fmt.Sprintf(articlePageTemplate, title, p.server.URL))
}

func card(href, title, day, clock string) string {
	return fmt.Sprintf(articleCardTemplate, href, title, day, clock)
}

func joinCards(cards []string) string {
	out := ""
	for _, c := range cards {
		out += c + "\n"
	}
	return out
}

func newTestFetcher() *Fetcher {
	r := retry.DefaultConfig()
	r.InitialBackoff = time.Millisecond
	r.MaxBackoff = 5 * time.Millisecond

	return NewFetcher(FetcherOptions{
		Cache:     cache.NewMemoryCache(10 * 1024 * 1024),
		Limiter:   ratelimit.NewDomainLimiter(1000, 1000),
		Client:    &http.Client{Timeout: 5 * time.Second},
		UserAgent: "TestScraper/1.0",
		CacheTTL:  time.Minute,
		Retry:     r,
	})
}

func newTestScraper(p *portal, concurrency int) *Scraper {
	return NewScraper(newTestFetcher(), Site{Base: p.server.URL}, concurrency)
}
