package engines

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// The broadsheet engines share one template: open-graph metadata with a
// headline selector fallback and the common video URL scan. They differ
// only in claimed domains and headline markup.

type templateEngine struct {
	name              string
	domains           []string
	headlineSelectors string
}

func (e *templateEngine) Name() string      { return e.name }
func (e *templateEngine) Domains() []string { return e.domains }

func (e *templateEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	title, description, image := openGraph(doc)
	if title == "" && e.headlineSelectors != "" {
		title = strings.TrimSpace(doc.Find(e.headlineSelectors).First().Text())
	}
	if title == "" {
		return nil, nil
	}

	result := &domain.ArticleResult{
		Title:       title,
		Description: description,
		Source:      e.name,
		ContentType: domain.ContentTypeArticle,
		Published:   publishedAt(doc),
	}

	result.Images = appendUnique(result.Images, absoluteURL(pageURL, image))
	doc.Find("article figure img, article picture img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := absoluteURL(pageURL, s.AttrOr("src", ""))
		if isLikelyContentImage(src) {
			result.Images = appendUnique(result.Images, src)
		}
		return len(result.Images) < 5
	})

	if html, err := doc.Html(); err == nil {
		for _, v := range ScanVideoURLs(html) {
			result.Videos = appendUnique(result.Videos, v)
		}
	}

	return result, nil
}

// NewWashingtonPostEngine extracts Washington Post articles.
func NewWashingtonPostEngine() Engine {
	return &templateEngine{
		name:              "Washington Post",
		domains:           []string{"washingtonpost.com"},
		headlineSelectors: `h1[data-qa="headline"], h1`,
	}
}

// NewWSJEngine extracts Wall Street Journal articles.
func NewWSJEngine() Engine {
	return &templateEngine{
		name:              "WSJ",
		domains:           []string{"wsj.com"},
		headlineSelectors: "h1.wsj-article-headline, h1",
	}
}

// NewFinancialTimesEngine extracts Financial Times articles.
func NewFinancialTimesEngine() Engine {
	return &templateEngine{
		name:              "Financial Times",
		domains:           []string{"ft.com"},
		headlineSelectors: "h1.article-classifier__heading, h1",
	}
}

// NewABCNewsEngine extracts ABC News articles.
func NewABCNewsEngine() Engine {
	return &templateEngine{
		name:              "ABC News",
		domains:           []string{"abcnews.go.com"},
		headlineSelectors: `h1[data-testid="prism-headline"], h1`,
	}
}
