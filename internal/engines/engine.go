// Package engines holds the per-site extraction engines and the registry
// that maps URLs onto them.
package engines

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// Engine extracts article metadata from one publisher's markup.
// Implementations must be stateless across calls besides their static
// domain list. Extract returns (nil, nil) when the markup does not match
// what the engine expects; that is an extraction mismatch, not an error,
// and the resolver advances to its next strategy.
type Engine interface {
	// Name identifies the engine and doubles as the item source name
	Name() string

	// Domains lists the host substrings this engine claims
	Domains() []string

	// Extract pulls (title, description, media candidates) out of the
	// rendered document fetched for url
	Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error)
}

// hostOf returns the lowercased host of a URL, tolerating bare domains.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Bare "example.com/path" submissions
		if i := strings.IndexAny(rawURL, "/?#"); i > 0 {
			return strings.ToLower(rawURL[:i])
		}
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Host)
}

// metaContent reads a single meta tag's content attribute.
func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// openGraph collects the standard open-graph fields every engine starts from.
func openGraph(doc *goquery.Document) (title, description, image string) {
	title = metaContent(doc, `meta[property="og:title"]`)
	if title == "" {
		title = metaContent(doc, `meta[name="twitter:title"]`)
	}
	description = metaContent(doc, `meta[property="og:description"]`)
	if description == "" {
		description = metaContent(doc, `meta[name="description"]`)
	}
	image = metaContent(doc, `meta[property="og:image"]`)
	if image == "" {
		image = metaContent(doc, `meta[name="twitter:image"]`)
	}
	return title, description, image
}

// publishedAt reads the article publication timestamp meta tag if present.
func publishedAt(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[property="article:published_time"]`); v != "" {
		return v
	}
	return metaContent(doc, `meta[itemprop="datePublished"]`)
}

// absoluteURL resolves href against the page URL, dropping anything that
// is not http(s).
func absoluteURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

// clipBytes caps s at max bytes without splitting a multi-byte rune, so
// clipped Cyrillic or emoji text stays valid UTF-8.
func clipBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// appendUnique appends u to list unless empty or already present.
func appendUnique(list []string, u string) []string {
	if u == "" {
		return list
	}
	for _, existing := range list {
		if existing == u {
			return list
		}
	}
	return append(list, u)
}
