package engines

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// NBCNewsEngine extracts NBC News articles. NBC serves its video through
// embedded Brightcove players, so the engine reconstructs player URLs from
// the data attributes when no direct asset is present.
type NBCNewsEngine struct{}

func NewNBCNewsEngine() *NBCNewsEngine { return &NBCNewsEngine{} }

func (e *NBCNewsEngine) Name() string { return "NBC News" }

func (e *NBCNewsEngine) Domains() []string {
	return []string{"nbcnews.com"}
}

func (e *NBCNewsEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	title, description, image := openGraph(doc)
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1.article-hero-headline__htag, h1").First().Text())
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

	result.Images = appendUnique(result.Images, absoluteURL(pageURL, image))
	doc.Find("article picture img, figure.article-hero__media img").Each(func(_ int, s *goquery.Selection) {
		src := absoluteURL(pageURL, s.AttrOr("src", ""))
		if isLikelyContentImage(src) {
			result.Images = appendUnique(result.Images, src)
		}
	})

	// Brightcove player iframes carry the asset reference directly
	doc.Find(`iframe[src*="players.brightcove.net"]`).Each(func(_ int, s *goquery.Selection) {
		result.Videos = appendUnique(result.Videos, s.AttrOr("src", ""))
	})

	// video-js embeds only expose account/player/video ids; rebuild the
	// canonical player URL from them
	doc.Find("video-js[data-video-id], div[data-video-id][data-account]").Each(func(_ int, s *goquery.Selection) {
		account := s.AttrOr("data-account", "")
		player := s.AttrOr("data-player", "default")
		videoID := s.AttrOr("data-video-id", "")
		if account == "" || videoID == "" {
			return
		}
		playerURL := fmt.Sprintf("https://players.brightcove.net/%s/%s_default/index.html?videoId=%s",
			account, player, videoID)
		result.Videos = appendUnique(result.Videos, playerURL)
	})

	if html, err := doc.Html(); err == nil {
		for _, v := range ScanVideoURLs(html) {
			result.Videos = appendUnique(result.Videos, v)
		}
	}

	return result, nil
}
