package engines

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

var tgBackgroundImage = regexp.MustCompile(`background-image:\s*url\('([^']+)'\)`)

// TelegramPostEngine extracts public t.me post preview pages.
type TelegramPostEngine struct{}

func NewTelegramPostEngine() *TelegramPostEngine { return &TelegramPostEngine{} }

func (e *TelegramPostEngine) Name() string { return "Telegram Post" }

func (e *TelegramPostEngine) Domains() []string {
	return []string{"t.me", "telegram.me"}
}

// ContentType marks everything this engine claims as a social post.
func (e *TelegramPostEngine) ContentType() string { return domain.ContentTypeSocialPost }

func (e *TelegramPostEngine) Extract(pageURL string, doc *goquery.Document) (*domain.ArticleResult, error) {
	text := strings.TrimSpace(doc.Find("div.tgme_widget_message_text").First().Text())
	if text == "" {
		// Preview pages without the widget still carry og metadata
		ogTitle, ogDesc, _ := openGraph(doc)
		if ogDesc == "" {
			return nil, nil
		}
		text = ogDesc
		if ogTitle == "" {
			ogTitle = text
		}
	}

	title := clipBytes(text, 120)

	result := &domain.ArticleResult{
		Title:       title,
		Description: text,
		Source:      e.Name(),
		ContentType: domain.ContentTypeSocialPost,
		Username:    strings.TrimSpace(doc.Find("div.tgme_widget_message_owner_name span").First().Text()),
	}

	// Photo attachments are inline background-image styles
	doc.Find("a.tgme_widget_message_photo_wrap").Each(func(_ int, s *goquery.Selection) {
		if m := tgBackgroundImage.FindStringSubmatch(s.AttrOr("style", "")); len(m) == 2 {
			result.Images = appendUnique(result.Images, m[1])
		}
	})

	doc.Find("video.tgme_widget_message_video, i.tgme_widget_message_video_thumb + video").Each(func(_ int, s *goquery.Selection) {
		result.Videos = appendUnique(result.Videos, s.AttrOr("src", ""))
	})

	return result, nil
}
