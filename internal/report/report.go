// Package report computes the headline figures of a news dataset and renders
// them for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/uaenergy/news/internal/nlp"
	"github.com/uaenergy/news/internal/ui"
	"github.com/uaenergy/news/pkg/models"
)

const dayLayout = "2006-01-02"

// MonthCount is the number of articles published in a month
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TopicCount is the number of articles labelled with a topic
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Summary holds the dataset figures
type Summary struct {
	Articles    int               `json:"articles"`
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	DaysCovered int               `json:"days_covered"`
	SpanDays    int               `json:"span_days"`
	WithoutText int               `json:"without_text"`
	AvgWords    float64           `json:"avg_words"`
	UniqueTags  int               `json:"unique_tags"`
	PerMonth    []MonthCount      `json:"per_month"`
	TopTags     []models.TagCount `json:"top_tags"`
	Topics      []TopicCount      `json:"topics,omitempty"`
}

// Summarize computes the figures of articles. topN limits the tag list.
// Average words are taken over articles that have text.
func Summarize(articles []models.Article, topN int) Summary {
	s := Summary{Articles: len(articles)}
	if len(articles) == 0 {
		s.PerMonth = []MonthCount{}
		s.TopTags = []models.TagCount{}
		return s
	}

	var first, last time.Time
	days := make(map[string]bool)
	months := make(map[string]int)
	topics := make(map[string]int)
	words, withText := 0, 0

	for _, a := range articles {
		if !a.Date.IsZero() {
			if first.IsZero() || a.Date.Before(first) {
				first = a.Date
			}
			if last.IsZero() || a.Date.After(last) {
				last = a.Date
			}
			days[a.Date.Format(dayLayout)] = true
			months[a.Date.Format("2006-01")]++
		}
		if a.HasText() {
			withText++
			words += nlp.WordCount(a.Text)
		} else {
			s.WithoutText++
		}
		if a.Topic != "" {
			topics[a.Topic]++
		}
	}

	if !first.IsZero() {
		s.From = first.Format(dayLayout)
		s.To = last.Format(dayLayout)
		start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
		s.SpanDays = int(end.Sub(start).Hours()/24) + 1
	}
	s.DaysCovered = len(days)
	if withText > 0 {
		s.AvgWords = float64(words) / float64(withText)
	}

	s.PerMonth = make([]MonthCount, 0, len(months))
	for m, n := range months {
		s.PerMonth = append(s.PerMonth, MonthCount{Month: m, Count: n})
	}
	sort.Slice(s.PerMonth, func(i, j int) bool { return s.PerMonth[i].Month < s.PerMonth[j].Month })

	tags := nlp.CountTags(articles)
	s.UniqueTags = len(tags)
	s.TopTags = nlp.TopTags(tags, topN)

	for t, n := range topics {
		s.Topics = append(s.Topics, TopicCount{Topic: t, Count: n})
	}
	sort.Slice(s.Topics, func(i, j int) bool {
		if s.Topics[i].Count != s.Topics[j].Count {
			return s.Topics[i].Count > s.Topics[j].Count
		}
		return s.Topics[i].Topic < s.Topics[j].Topic
	})
	return s
}

// WriteJSON writes the summary as indented JSON
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

const barWidth = 30

// WriteText renders the summary as coloured text
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", ui.Heading("ua-energy.org news"))
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %-22s %s\n", label, ui.Value(value))
	}
	row("Articles", fmt.Sprint(s.Articles))
	if s.From != "" {
		row("Period", fmt.Sprintf("%s .. %s", s.From, s.To))
		row("Days with news", fmt.Sprintf("%d of %d", s.DaysCovered, s.SpanDays))
	}
	row("Without text", fmt.Sprint(s.WithoutText))
	row("Average words", fmt.Sprintf("%.0f", s.AvgWords))
	row("Unique tags", fmt.Sprint(s.UniqueTags))

	if len(s.PerMonth) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.Heading("Articles per month"))
		top := 0
		for _, m := range s.PerMonth {
			top = max(top, m.Count)
		}
		for _, m := range s.PerMonth {
			fmt.Fprintf(&b, "  %s %6d %s\n", m.Month, m.Count, ui.Bar(m.Count, top, barWidth))
		}
	}

	if len(s.TopTags) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.Heading("Top tags"))
		for i, t := range s.TopTags {
			label := t.Tag
			if t.Translation != "" {
				label += " " + ui.Dim("("+t.Translation+")")
			}
			fmt.Fprintf(&b, "  %3d. %-30s %s\n", i+1, label, ui.Value(fmt.Sprint(t.Count)))
		}
	}

	if len(s.Topics) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ui.Heading("Topics"))
		for _, t := range s.Topics {
			fmt.Fprintf(&b, "  %-40s %s\n", t.Topic, ui.Value(fmt.Sprint(t.Count)))
		}
	}

	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
