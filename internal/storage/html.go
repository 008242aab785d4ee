package storage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CleanHTML strips scripts, embeds, forms and every attribute except link
// targets and image sources from an article body.
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()
	// tags are exported separately
	doc.Find("div.tags").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch {
			case node.Data == "a" && (attr.Key == "href" || attr.Key == "title"):
				kept = append(kept, attr)
			case node.Data == "img" && (attr.Key == "src" || attr.Key == "alt" || attr.Key == "title"):
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}
