package engine

import (
	"net/url"
	"strings"
	"time"

	urlutil "github.com/uaenergy/news/internal/utils/url"
)

// Website is the root of the UA-Energy news portal
const Website = "https://ua-energy.org"

const (
	newsPath       = "uk/news"
	postsPath      = "uk/posts"
	readAlsoMarker = "ЧИТАЙТЕ ТАКОЖ"
	newsTitleSel   = "h1.title"
	articleCardSel = "div.article"
	articleBodySel = "div.content-article-inner"
	articleTagsSel = "div.tags"
)

// Site describes where the portal lives; tests point it at an httptest server
type Site struct {
	Base string
}

// DefaultSite is the production portal
var DefaultSite = Site{Base: Website}

func (s Site) base() string {
	if s.Base == "" {
		return Website
	}
	return strings.TrimRight(s.Base, "/")
}

// NewsURL returns the news listing for a single day
func (s Site) NewsURL(day time.Time) string {
	q := url.Values{}
	q.Set("date", FormatQueryDate(day))
	return s.base() + "/" + newsPath + "?" + q.Encode()
}

// PostsPrefix is the prefix shared by every article URL
func (s Site) PostsPrefix() string {
	return s.base() + "/" + postsPath
}

// Resolve makes an href absolute against the portal root
func (s Site) Resolve(href string) string {
	return urlutil.ResolveURL(s.base()+"/", strings.TrimSpace(href))
}
