package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uaenergy/news/pkg/models"
)

// articleRow is the parquet layout of an article. Dates are RFC 3339 strings
// so the Kyiv offset survives a round trip.
type articleRow struct {
	URL      string   `parquet:"url"`
	Title    string   `parquet:"title"`
	Date     string   `parquet:"date"`
	Text     string   `parquet:"text"`
	Tags     []string `parquet:"tags,list"`
	Hrefs    []string `parquet:"hrefs,list"`
	ReadAlso []string `parquet:"read_also,list"`
	Topic    string   `parquet:"topic"`
	HTML     string   `parquet:"html"`
}

type entityRow struct {
	Article string   `parquet:"article"`
	Name    string   `parquet:"name"`
	Lemma   string   `parquet:"lemma"`
	Label   string   `parquet:"label"`
	Context []string `parquet:"context,list"`
}

type tagRow struct {
	Tag         string `parquet:"tag"`
	Translation string `parquet:"translation"`
	Count       int64  `parquet:"count"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// nilIfEmpty keeps "no values" as nil after a round trip
func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func toArticleRows(articles []models.Article) []articleRow {
	rows := make([]articleRow, len(articles))
	for i, a := range articles {
		rows[i] = articleRow{
			URL:      a.URL,
			Title:    a.Title,
			Date:     formatDate(a.Date),
			Text:     a.Text,
			Tags:     a.Tags,
			Hrefs:    a.Hrefs,
			ReadAlso: a.ReadAlso,
			Topic:    a.Topic,
			HTML:     a.HTML,
		}
	}
	return rows
}

func fromArticleRows(rows []articleRow) ([]models.Article, error) {
	articles := make([]models.Article, len(rows))
	for i, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, r.URL, err)
		}
		articles[i] = models.Article{
			Metadata: models.Metadata{URL: r.URL, Title: r.Title, Date: date},
			Text:     r.Text,
			Tags:     nilIfEmpty(r.Tags),
			Hrefs:    nilIfEmpty(r.Hrefs),
			ReadAlso: nilIfEmpty(r.ReadAlso),
			Topic:    r.Topic,
			HTML:     r.HTML,
		}
	}
	return articles, nil
}

func toEntityRows(entities []models.NamedEntity) []entityRow {
	rows := make([]entityRow, len(entities))
	for i, e := range entities {
		rows[i] = entityRow(e)
	}
	return rows
}

func toTagRows(tags []models.TagCount) []tagRow {
	rows := make([]tagRow, len(tags))
	for i, t := range tags {
		rows[i] = tagRow{Tag: t.Tag, Translation: t.Translation, Count: int64(t.Count)}
	}
	return rows
}

// table is a header plus string rows for the flat formats
type table struct {
	header []string
	rows   [][]string
}

func articleTable(articles []models.Article) table {
	t := table{header: []string{"url", "title", "date", "topic", "tags", "hrefs", "read_also", "text"}}
	for _, a := range articles {
		t.rows = append(t.rows, []string{
			a.URL,
			a.Title,
			formatDate(a.Date),
			a.Topic,
			strings.Join(a.Tags, listSeparator),
			strings.Join(a.Hrefs, listSeparator),
			strings.Join(a.ReadAlso, listSeparator),
			a.Text,
		})
	}
	return t
}

func entityTable(entities []models.NamedEntity) table {
	t := table{header: []string{"article", "name", "lemma", "label", "context"}}
	for _, e := range entities {
		t.rows = append(t.rows, []string{
			e.Article,
			e.Name,
			e.Lemma,
			e.Label,
			strings.Join(e.Context, listSeparator),
		})
	}
	return t
}

func tagTable(tags []models.TagCount) table {
	t := table{header: []string{"tag", "translation", "count"}}
	for _, tc := range tags {
		t.rows = append(t.rows, []string{tc.Tag, tc.Translation, strconv.Itoa(tc.Count)})
	}
	return t
}
