package engines

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// politicoImageHosts restricts image candidates to Politico's own CDN.
// Stock and syndication images from other hosts are rejected outright.
var politicoImageHosts = []string{
	"politico.com",
	"politico.eu",
	"static.politico.com",
	"/cdn-cgi/image",
	"dims4/default/resize",
}

// PoliticoEngine extracts Politico (US and EU) articles.
type PoliticoEngine struct{}

func NewPoliticoEngine() *PoliticoEngine { return &PoliticoEngine{} }

func (e *PoliticoEngine) Name() string { return "POLITICO" }

func (e *PoliticoEngine) Domains() []string {
	return []string{"politico.com", "politico.eu"}
}

func (e *PoliticoEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	title, description, image := openGraph(doc)
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1.headline, h2.headline, h1").First().Text())
	}
	if title == "" {
		return nil, nil
	}

	result := &domain.ArticleResult{
		Title:       title,
		Description: description,
		Source:      e.Name(),
		ContentType: domain.ContentTypeArticle,
		Published:   publishedAt(doc),
	}

	if isPoliticoImage(image) {
		result.Images = appendUnique(result.Images, absoluteURL(pageURL, image))
	}
	doc.Find("figure img, picture img").Each(func(_ int, s *goquery.Selection) {
		src := absoluteURL(pageURL, s.AttrOr("src", ""))
		if isPoliticoImage(src) && isLikelyContentImage(src) {
			result.Images = appendUnique(result.Images, src)
		}
	})

	if html, err := doc.Html(); err == nil {
		for _, v := range ScanVideoURLs(html) {
			result.Videos = appendUnique(result.Videos, v)
		}
	}

	return result, nil
}

func isPoliticoImage(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	for _, host := range politicoImageHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
