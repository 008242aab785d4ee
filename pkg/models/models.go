package models

import "time"

// Metadata is an article card as listed on a daily news page
type Metadata struct {
	URL   string    `json:"url"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Article is a news article with its metadata and parsed body
type Article struct {
	Metadata
	Text     string   `json:"text,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Hrefs    []string `json:"hrefs,omitempty"`
	ReadAlso []string `json:"read_also,omitempty"`
	HTML     string   `json:"html,omitempty"`
	Topic    string   `json:"topic,omitempty"`
}

// HasText reports whether the article body was found
func (a Article) HasText() bool {
	return a.Text != ""
}

// Entity labels kept by the entity extractor
const (
	LabelOrganization = "ORG"
	LabelPerson       = "PER"
	LabelLocation     = "LOC"
)

// NamedEntity is a named entity mention with its surrounding sentences
type NamedEntity struct {
	Article string   `json:"article,omitempty"`
	Name    string   `json:"name"`
	Lemma   string   `json:"lemma"`
	Label   string   `json:"label"`
	Context []string `json:"context"`
}

// Topic is a topic produced by a topic model
type Topic struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// TagCount is the number of articles carrying a tag
type TagCount struct {
	Tag         string `json:"tag"`
	Translation string `json:"translation,omitempty"`
	Count       int    `json:"count"`
}

// FetchResult is the outcome of fetching a single article
type FetchResult struct {
	Index   int
	Article *Article
	Error   error
}
