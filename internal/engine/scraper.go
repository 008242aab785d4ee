// internal/engine/scraper.go
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/internal/reqctx"
	"github.com/uaenergy/news/pkg/models"
)

// Scraper walks the portal's daily news pages and downloads every article
type Scraper struct {
	fetcher     PageFetcher
	site        Site
	concurrency int
}

// NewScraper creates a Scraper. If concurrency <= 0 articles are fetched one at a time.
func NewScraper(fetcher PageFetcher, site Site, concurrency int) *Scraper {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Scraper{
		fetcher:     fetcher,
		site:        site,
		concurrency: concurrency,
	}
}

// Name returns the name of this scraper
func (s *Scraper) Name() string {
	return "NewsScraper"
}

// RangeOptions tunes ParseRange
type RangeOptions struct {
	// ContinueOnError logs failed days and keeps going
	ContinueOnError bool
	// OnDay is called after each day with the number of articles found
	OnDay func(day time.Time, articles int, err error)
}

// FetchArticle downloads and parses a single article
func (s *Scraper) FetchArticle(ctx context.Context, meta models.Metadata) (*models.Article, error) {
	url := s.site.Resolve(meta.URL)
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", url, err)
	}
	article := s.site.ParseArticle(doc, meta)
	return &article, nil
}

// ParseNews returns every article published on day.
// A day without news (HTTP 404) yields a nil slice and no error.
func (s *Scraper) ParseNews(ctx context.Context, day time.Time) ([]models.Article, error) {
	logger := reqctx.Logger(ctx)
	url := s.site.NewsURL(day)

	doc, err := s.fetcher.Fetch(ctx, url)
	if IsNotFound(err) {
		logger.Debug().Str("date", FormatQueryDate(day)).Msg("No news published")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("news page %s: %w", FormatQueryDate(day), err)
	}

	cards, err := s.site.ParseNewsPage(doc)
	if err != nil {
		return nil, fmt.Errorf("news page %s: %w", FormatQueryDate(day), err)
	}

	logger.Debug().
		Str("date", FormatQueryDate(day)).
		Int("cards", len(cards)).
		Msg("Parsed news page")

	return s.FetchArticles(ctx, cards)
}

// ParseRange scrapes every day from "from" to "to" inclusive and returns the
// articles deduplicated by URL, first occurrence winning.
func (s *Scraper) ParseRange(ctx context.Context, from, to time.Time, opts RangeOptions) ([]models.Article, error) {
	if to.Before(from) {
		return nil, NewEngineError(ErrCodeValidation, "end date is before start date", nil)
	}

	logger := reqctx.Logger(ctx)
	var all []models.Article

	for _, day := range Days(from, to) {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		articles, err := s.ParseNews(ctx, day)
		if opts.OnDay != nil {
			opts.OnDay(day, len(articles), err)
		}
		if err != nil {
			if !opts.ContinueOnError {
				return all, err
			}
			logger.Warn().
				Err(err).
				Fields(ErrorDetails(err)).
				Str("date", FormatQueryDate(day)).
				Msg("Skipping day")
			continue
		}
		all = append(all, articles...)
	}

	return Dedup(nil, all), nil
}

// Dedup merges fresh articles into existing ones. Existing records win on
// duplicate URLs; the result is ordered by date, then URL.
func Dedup(existing, fresh []models.Article) []models.Article {
	seen := make(map[string]bool, len(existing)+len(fresh))
	out := make([]models.Article, 0, len(existing)+len(fresh))

	for _, batch := range [][]models.Article{existing, fresh} {
		for _, a := range batch {
			if seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].URL < out[j].URL
	})

	if dropped := len(existing) + len(fresh) - len(out); dropped > 0 {
		log.Debug().Int("duplicates", dropped).Msg("Dropped duplicate articles")
	}
	return out
}
