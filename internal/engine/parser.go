// internal/engine/parser.go
package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/pkg/models"
)

// ParseNewsPage extracts article cards from a daily news page.
//
// The news block is the element right after the page heading; when the
// heading is missing the whole document is searched instead.
func (s Site) ParseNewsPage(doc *goquery.Document) ([]models.Metadata, error) {
	if doc == nil {
		return nil, NewEngineError(ErrCodeParseError, "empty document", ErrNoNewsBlock)
	}

	block := doc.Find(newsTitleSel).First().Next()
	if block.Length() == 0 {
		block = doc.Selection
	}

	var (
		cards    []models.Metadata
		parseErr error
	)
	block.Find(articleCardSel).EachWithBreak(func(i int, card *goquery.Selection) bool {
		link := card.Find("a[href]").First()
		href, _ := link.Attr("href")
		if strings.TrimSpace(href) == "" {
			log.Warn().Int("card", i).Msg("Article card without link, skipping")
			return true
		}

		var spans []string
		card.Find("span").Each(func(_ int, span *goquery.Selection) {
			spans = append(spans, span.Text())
		})

		date, err := ParseDate(strings.Join(spans, " "))
		if err != nil {
			parseErr = NewEngineError(ErrCodeParseError, "invalid article date", err).WithDetail("url", href)
			return false
		}

		cards = append(cards, models.Metadata{
			URL:   s.Resolve(href),
			Title: strings.TrimSpace(link.Text()),
			Date:  date,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return cards, nil
}

// ParseArticle builds an Article from a full article page.
// Pages without the article body keep only the card metadata.
func (s Site) ParseArticle(doc *goquery.Document, meta models.Metadata) models.Article {
	meta.URL = s.Resolve(meta.URL)
	article := models.Article{Metadata: meta}

	if doc == nil {
		return article
	}
	body := doc.Find(articleBodySel).First()
	if body.Length() == 0 {
		log.Debug().Str("url", meta.URL).Msg("Article body not found")
		return article
	}

	prefix := s.PostsPrefix()
	var hrefs []string
	body.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.Contains(href, prefix) {
			hrefs = append(hrefs, href)
		}
	})
	if len(hrefs) > 0 {
		article.Hrefs = hrefs
	}

	var paragraphs, readAlso []string
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if strings.Contains(text, readAlsoMarker) {
			if href, ok := p.Find("a[href]").First().Attr("href"); ok {
				readAlso = append(readAlso, s.Resolve(href))
			}
			return
		}
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	article.Text = strings.Join(paragraphs, " ")
	if len(readAlso) > 0 {
		article.ReadAlso = readAlso
	}

	if tagsBlock := body.Find(articleTagsSel).First(); tagsBlock.Length() > 0 {
		tags := []string{}
		tagsBlock.Find("a").Each(func(_ int, a *goquery.Selection) {
			if tag := strings.TrimSpace(a.Text()); tag != "" {
				tags = append(tags, tag)
			}
		})
		article.Tags = tags
	}

	article.HTML, _ = body.Html()
	return article
}
