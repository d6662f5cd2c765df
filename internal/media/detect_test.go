package media

import (
	"testing"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want domain.MediaType
	}{
		{"mp4 extension", "https://cdn.example.com/clips/report.mp4", domain.MediaVideo},
		{"hls manifest", "https://stream.example.com/live/master.m3u8", domain.MediaVideo},
		{"twimg video host", "https://video.twimg.com/ext_tw_video/123/pu/vid/720x1280/abc.mp4", domain.MediaVideo},
		{"brightcove player", "https://players.brightcove.net/2640/default_default/index.html?videoId=6360", domain.MediaVideo},
		{"tweet permalink", "https://twitter.com/nbcnews/status/17890", domain.MediaVideo},
		{"x.com permalink", "https://x.com/nbcnews/status/17890", domain.MediaVideo},
		{"twimg image no extension", "https://pbs.twimg.com/media/GXkQ9vWa?format=jpg&name=large", domain.MediaImage},
		{"jpeg extension", "https://static.example.com/photos/scene.jpeg", domain.MediaImage},
		{"png with query", "https://cdn.example.com/logo.png?v=3", domain.MediaImage},
		{"query-only video hint ignored", "https://example.com/page?file=clip.mp4", domain.MediaUnknown},
		{"article page", "https://www.example.com/politics/story-about-things", domain.MediaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.url); got != tt.want {
				t.Errorf("DetectType(%q) = %s, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsIndirect(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://players.brightcove.net/2640/default_default/index.html?videoId=6360", true},
		{"https://twitter.com/nbcnews/status/17890", true},
		{"https://stream.example.com/master.m3u8", true},
		{"https://video.twimg.com/ext_tw_video/123/pu/vid/720x1280/abc.mp4", false},
		{"https://cdn.example.com/clips/report.mp4", false},
		{"https://pbs.twimg.com/media/GXkQ9vWa?format=jpg", false},
	}
	for _, tt := range tests {
		if got := IsIndirect(tt.url); got != tt.want {
			t.Errorf("IsIndirect(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestClassifyPreservesOrder(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/a.jpg",
		"https://twitter.com/u/status/1",
		"https://example.com/unknown",
	}
	candidates := Classify(urls)
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	if candidates[0].Type != domain.MediaImage || candidates[0].Confidence != 1.0 {
		t.Errorf("direct image candidate = %+v", candidates[0])
	}
	if candidates[1].Type != domain.MediaVideo || candidates[1].Confidence >= 1.0 {
		t.Errorf("indirect video should score below direct, got %+v", candidates[1])
	}
	if candidates[2].Type != domain.MediaUnknown || candidates[2].Confidence != 0 {
		t.Errorf("unknown candidate = %+v", candidates[2])
	}
}
