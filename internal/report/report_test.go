package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaenergy/news/internal/ui"
	"github.com/uaenergy/news/pkg/models"
)

func article(day string, text string, topic string, tags ...string) models.Article {
	d, _ := time.Parse("2006-01-02 15:04", day)
	return models.Article{
		Metadata: models.Metadata{URL: "u/" + day, Date: d},
		Text:     text,
		Topic:    topic,
		Tags:     tags,
	}
}

func sample() []models.Article {
	return []models.Article{
		article("2024-02-28 10:00", "один два три", "Газ", "газ", "ціни"),
		article("2024-02-28 18:00", "один два три чотири п'ять", "Газ", "газ"),
		article("2024-03-02 09:00", "", "Світло", "світло"),
		article("2024-03-05 12:00", "раз два", "", "газ", "світло"),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), 2)

	assert.Equal(t, 4, s.Articles)
	assert.Equal(t, "2024-02-28", s.From)
	assert.Equal(t, "2024-03-05", s.To)
	assert.Equal(t, 3, s.DaysCovered)
	assert.Equal(t, 7, s.SpanDays, "2024 is a leap year")
	assert.Equal(t, 1, s.WithoutText)
	assert.InDelta(t, 10.0/3.0, s.AvgWords, 1e-9)
	assert.Equal(t, 3, s.UniqueTags)

	assert.Equal(t, []MonthCount{{"2024-02", 2}, {"2024-03", 2}}, s.PerMonth)
	assert.Equal(t, []models.TagCount{{Tag: "газ", Count: 3}, {Tag: "світло", Count: 2}}, s.TopTags)
	assert.Equal(t, []TopicCount{{"Газ", 2}, {"Світло", 1}}, s.Topics)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 10)
	assert.Equal(t, 0, s.Articles)
	assert.Empty(t, s.From)

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"per_month": []`)
	assert.Contains(t, buf.String(), `"top_tags": []`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summarize(sample(), 10).WriteJSON(&buf))

	var decoded Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4, decoded.Articles)
	assert.Len(t, decoded.TopTags, 3)
}

func TestWriteText(t *testing.T) {
	s := Summarize(sample(), 10)
	s.TopTags[0].Translation = "gas"

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	out := ui.Strip(buf.String())

	assert.Contains(t, out, "Articles")
	assert.Contains(t, out, "2024-02-28 .. 2024-03-05")
	assert.Contains(t, out, "3 of 7")
	assert.Contains(t, out, "2024-02      2")
	assert.Contains(t, out, "газ (gas)")
	assert.Contains(t, out, "Topics")
	assert.False(t, strings.Contains(out, "\033["), "all colours are stripped")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", ui.Bar(0, 10, 30))
	assert.Equal(t, strings.Repeat("█", 15), ui.Strip(ui.Bar(5, 10, 30)))
	assert.Equal(t, "█", ui.Strip(ui.Bar(1, 1000, 30)))
}
