package storage

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/uaenergy/news/internal/utils/url"
	"github.com/uaenergy/news/pkg/models"
)

// newConverter returns a Markdown converter that resolves relative links
// against base
func newConverter(base string) *md.Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(base, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", strings.TrimSpace(selec.Text()), resolved, titlePart)
			return &str
		},
	})
	return converter
}

// ArticleMarkdown renders one article as a Markdown section. The body is
// converted from the stored HTML, or taken from the text when no HTML
// was kept.
func ArticleMarkdown(a models.Article) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", a.Title)

	meta := []string{fmt.Sprintf("<%s>", a.URL)}
	if !a.Date.IsZero() {
		meta = append([]string{a.Date.Format("2006-01-02 15:04")}, meta...)
	}
	if a.Topic != "" {
		meta = append(meta, "topic: "+a.Topic)
	}
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n")

	if len(a.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(a.Tags, ", "))
	}

	body := a.Text
	if a.HTML != "" {
		cleaned, err := CleanHTML(a.HTML)
		if err != nil {
			return "", err
		}
		body, err = newConverter(a.URL).ConvertString(cleaned)
		if err != nil {
			return "", err
		}
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func writeMarkdown(path string, articles []models.Article) error {
	sections := make([]string, 0, len(articles))
	for _, a := range articles {
		s, err := ArticleMarkdown(a)
		if err != nil {
			return fmt.Errorf("%s: %w", a.URL, err)
		}
		sections = append(sections, s)
	}

	content := "# ua-energy.org news\n\n" + strings.Join(sections, "\n---\n\n")
	return replaceFile(path, func(tmp string) error {
		return os.WriteFile(tmp, []byte(content), 0644)
	})
}
