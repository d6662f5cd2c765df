package engines

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// TwitterEngine extracts tweets from twitter.com / x.com. Tweets are
// social posts: a video found in the post is the primary content and wins
// over any thumbnail image downstream.
type TwitterEngine struct{}

func NewTwitterEngine() *TwitterEngine { return &TwitterEngine{} }

func (e *TwitterEngine) Name() string { return "Twitter/X" }

func (e *TwitterEngine) Domains() []string {
	return []string{"twitter.com", "x.com"}
}

// ContentType marks everything this engine claims as a social post, even
// when extraction falls back to provider fields instead of tweet markup.
func (e *TwitterEngine) ContentType() string { return domain.ContentTypeSocialPost }

func (e *TwitterEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	title, description, _ := openGraph(doc)

	// Rendered tweet text beats the og:title, which X truncates
	tweetText := strings.TrimSpace(doc.Find(`div[data-testid="tweetText"]`).First().Text())
	if tweetText != "" {
		title = tweetText
	}
	if title == "" {
		return nil, nil
	}
	if description == "" {
		description = title
	}

	result := &domain.ArticleResult{
		Title:       title,
		Description: description,
		Source:      e.Name(),
		ContentType: domain.ContentTypeSocialPost,
		Username:    usernameFromTweetURL(pageURL),
	}

	// Media attachments live on the twimg CDN
	doc.Find(`img[src*="pbs.twimg.com/media"]`).Each(func(_ int, s *goquery.Selection) {
		result.Images = appendUnique(result.Images, s.AttrOr("src", ""))
	})

	doc.Find(`video[src*="twimg.com"], video source[src*="twimg.com"]`).Each(func(_ int, s *goquery.Selection) {
		result.Videos = appendUnique(result.Videos, s.AttrOr("src", ""))
	})

	// A video poster without a <video> src still signals a video post;
	// the tweet URL itself is the downloadable reference then
	if len(result.Videos) == 0 {
		posters := doc.Find(`video[poster*="amplify_video_thumb"], video[poster*="ext_tw_video_thumb"]`)
		if posters.Length() > 0 {
			result.Videos = appendUnique(result.Videos, pageURL)
		}
	}

	if html, err := doc.Html(); err == nil {
		for _, v := range ScanVideoURLs(html) {
			result.Videos = appendUnique(result.Videos, v)
		}
	}

	return result, nil
}

// usernameFromTweetURL pulls the account handle out of
// https://x.com/<user>/status/<id> shaped URLs.
func usernameFromTweetURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 1 && parts[0] != "" && parts[0] != "i" {
		return "@" + parts[0]
	}
	return ""
}
