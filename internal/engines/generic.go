package engines

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// GenericEngine is the heuristic fallthrough for domains no site engine
// claims: open-graph metadata plus a raw scan for known video URL shapes.
type GenericEngine struct{}

// NewGenericEngine creates the heuristic engine.
func NewGenericEngine() *GenericEngine {
	return &GenericEngine{}
}

func (e *GenericEngine) Name() string { return "Generic" }

// Domains is empty: the generic engine claims nothing and is only reached
// through the registry fallthrough.
func (e *GenericEngine) Domains() []string { return nil }

func (e *GenericEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	title, description, image := openGraph(doc)

	if title == "" {
		// <title> as last resort
		title = strings.TrimSpace(doc.Find("title").First().Text())
		title = whitespaceRun.ReplaceAllString(title, " ")
	}
	if title == "" {
		return nil, nil
	}

	result := &domain.ArticleResult{
		Title:       title,
		Description: description,
		Source:      siteName(pageURL, doc),
		ContentType: domain.ContentTypeArticle,
		Published:   publishedAt(doc),
	}

	result.Images = appendUnique(result.Images, absoluteURL(pageURL, image))

	// Visible article images, skipping obvious chrome (icons, spacers)
	doc.Find("article img, figure img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := absoluteURL(pageURL, s.AttrOr("src", ""))
		if isLikelyContentImage(src) {
			result.Images = appendUnique(result.Images, src)
		}
		return len(result.Images) < 5
	})

	// Raw scan for video-delivery URL shapes anywhere in the markup
	if html, err := doc.Html(); err == nil {
		for _, v := range ScanVideoURLs(html) {
			result.Videos = appendUnique(result.Videos, v)
		}
	}
	doc.Find("video source[src], video[src]").Each(func(_ int, s *goquery.Selection) {
		result.Videos = appendUnique(result.Videos, absoluteURL(pageURL, s.AttrOr("src", "")))
	})

	return result, nil
}

// siteName prefers og:site_name over the bare host.
func siteName(pageURL string, doc *goquery.Document) string {
	if name := metaContent(doc, `meta[property="og:site_name"]`); name != "" {
		return name
	}
	host := hostOf(pageURL)
	return strings.TrimPrefix(host, "www.")
}

// isLikelyContentImage filters out tracking pixels, icons and svg chrome.
func isLikelyContentImage(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	for _, skip := range []string{".svg", "sprite", "icon", "logo", "pixel", "1x1", "avatar", "badge"} {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	return true
}
