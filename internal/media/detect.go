package media

import (
	"net/url"
	"path"
	"strings"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m3u8": true,
	".mkv":  true,
	".avi":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// DetectType classifies a candidate URL by host and extension. Query
// parameters never influence the type; pbs.twimg.com serves JPEGs with
// ?format=jpg and no path extension at all.
func DetectType(rawURL string) domain.MediaType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.MediaUnknown
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case strings.Contains(host, "video.twimg.com"):
		return domain.MediaVideo
	case strings.Contains(host, "players.brightcove.net"):
		return domain.MediaVideo
	case strings.Contains(host, "pbs.twimg.com"):
		return domain.MediaImage
	}

	// Tweet permalinks carry the video; the asset URL is only reachable
	// through an extractor tool.
	if isTweetPermalink(host, u.Path) {
		return domain.MediaVideo
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if videoExtensions[ext] {
		return domain.MediaVideo
	}
	if imageExtensions[ext] {
		return domain.MediaImage
	}

	return domain.MediaUnknown
}

// IsIndirect reports whether the URL is a page embedding the asset rather
// than the asset itself, so acquisition must go through an extractor tool
// instead of a plain HTTP download.
func IsIndirect(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())

	if strings.Contains(host, "players.brightcove.net") {
		return true
	}
	if isTweetPermalink(host, u.Path) {
		return true
	}
	// HLS manifests need remuxing into a single file
	if strings.HasSuffix(strings.ToLower(u.Path), ".m3u8") {
		return true
	}
	return false
}

func isTweetPermalink(host, urlPath string) bool {
	if !strings.Contains(host, "twitter.com") && host != "x.com" && !strings.HasSuffix(host, ".x.com") {
		return false
	}
	return strings.Contains(urlPath, "/status/")
}

// Classify maps raw candidate URLs onto typed candidates, preserving order
func Classify(urls []string) []domain.MediaCandidate {
	candidates := make([]domain.MediaCandidate, 0, len(urls))
	for _, raw := range urls {
		t := DetectType(raw)
		confidence := 1.0
		if t == domain.MediaUnknown {
			confidence = 0
		} else if IsIndirect(raw) {
			confidence = 0.8
		}
		candidates = append(candidates, domain.MediaCandidate{
			URL:        raw,
			Type:       t,
			Confidence: confidence,
		})
	}
	return candidates
}
