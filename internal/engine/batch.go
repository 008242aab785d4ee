// internal/engine/batch.go
package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/pkg/models"
)

// FetchArticles downloads the articles behind cards using a bounded worker
// pool. Results keep the card order; the first failure cancels the rest and
// is returned.
func (s *Scraper) FetchArticles(ctx context.Context, cards []models.Metadata) ([]models.Article, error) {
	if len(cards) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(cards))
	results := make(chan models.FetchResult, len(cards))

	workers := s.concurrency
	if workers > len(cards) {
		workers = len(cards)
	}

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go s.worker(ctx, w, cards, jobs, results, &wg)
	}

	for i := range cards {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	articles := make([]models.Article, len(cards))
	var firstErr error
	for res := range results {
		if res.Error != nil {
			if firstErr == nil {
				firstErr = res.Error
				cancel()
			}
			continue
		}
		articles[res.Index] = *res.Article
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return articles, nil
}

func (s *Scraper) worker(ctx context.Context, id int, cards []models.Metadata, jobs <-chan int, results chan<- models.FetchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			results <- models.FetchResult{Index: i, Error: err}
			continue
		}

		log.Debug().
			Int("worker_id", id).
			Str("url", cards[i].URL).
			Msg("Worker fetching article")

		article, err := s.FetchArticle(ctx, cards[i])
		results <- models.FetchResult{Index: i, Article: article, Error: err}
	}
}
