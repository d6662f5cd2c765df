package media

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type fakeDownloader struct {
	calls []string
	fail  map[string]error
}

func (f *fakeDownloader) Download(_ context.Context, rawURL, destDir string, _ int64, _ domain.MediaType) (string, error) {
	f.calls = append(f.calls, rawURL)
	if err := f.fail[rawURL]; err != nil {
		return "", err
	}
	return writeArtifact(destDir, fileStem(rawURL)+".bin")
}

type fakeExtractor struct {
	calls []string
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, pageURL, destDir string) (string, error) {
	f.calls = append(f.calls, pageURL)
	if f.err != nil {
		return "", f.err
	}
	return writeArtifact(destDir, fileStem(pageURL)+".mp4")
}

type fakeVideoTool struct {
	duration  float64
	trimCalls []int
}

func (f *fakeVideoTool) Duration(context.Context, string) (float64, error) {
	return f.duration, nil
}

func (f *fakeVideoTool) Trim(_ context.Context, _ string, offsetSec int) error {
	f.trimCalls = append(f.trimCalls, offsetSec)
	return nil
}

func writeArtifact(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, []byte("payload"), 0o644)
}

func newTestManager(t *testing.T, dl *fakeDownloader, ex *fakeExtractor, vt *fakeVideoTool) *Manager {
	t.Helper()
	cfg := config.MediaConfig{
		Dir:                 t.TempDir(),
		MaxImageSizeMB:      10,
		MaxVideoSizeMB:      100,
		MaxVideoDurationSec: 300,
	}
	return NewManager(cfg, dl, ex, vt, slog.Default())
}

func TestAcquireSocialPostPrefersVideo(t *testing.T) {
	dl := &fakeDownloader{}
	m := newTestManager(t, dl, &fakeExtractor{}, &fakeVideoTool{duration: 30})

	item := &domain.Item{ID: 1, ContentType: domain.ContentTypeSocialPost}
	result := &domain.ArticleResult{
		Images: []string{"https://pbs.twimg.com/media/abc?format=jpg"},
		Videos: []string{"https://video.twimg.com/ext_tw_video/1/pu/vid/720x1280/v.mp4"},
	}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if item.LocalVideoPath == "" {
		t.Error("expected video artifact for social post")
	}
	if item.LocalImagePath != "" {
		t.Errorf("social post with video must not keep an image, got %q", item.LocalImagePath)
	}
	if len(item.Images) != 1 || len(item.Videos) != 1 {
		t.Errorf("raw candidate lists must be recorded as-is: %v / %v", item.Images, item.Videos)
	}
}

func TestAcquireIndirectGoesThroughExtractor(t *testing.T) {
	dl := &fakeDownloader{}
	ex := &fakeExtractor{}
	m := newTestManager(t, dl, ex, &fakeVideoTool{duration: 30})

	tweet := "https://twitter.com/nbcnews/status/17890"
	item := &domain.Item{ID: 2, ContentType: domain.ContentTypeSocialPost}
	result := &domain.ArticleResult{Videos: []string{tweet}}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if len(ex.calls) != 1 || ex.calls[0] != tweet {
		t.Errorf("extractor calls = %v, want the tweet permalink", ex.calls)
	}
	if len(dl.calls) != 0 {
		t.Errorf("indirect candidate must not hit the plain downloader, got %v", dl.calls)
	}
	if item.LocalVideoPath == tweet {
		t.Error("candidate URL leaked into the local path")
	}
	if item.LocalVideoPath == "" || !strings.HasSuffix(item.LocalVideoPath, ".mp4") {
		t.Errorf("LocalVideoPath = %q, want extracted file", item.LocalVideoPath)
	}
	if _, err := os.Stat(item.LocalVideoPath); err != nil {
		t.Errorf("local path must point at a file on disk: %v", err)
	}
}

func TestAcquireSkipsUntypedCandidates(t *testing.T) {
	page := "https://example.com/politics/story-about-things"
	image := "https://example.com/lead.jpg"
	dl := &fakeDownloader{}
	ex := &fakeExtractor{}
	m := newTestManager(t, dl, ex, &fakeVideoTool{duration: 30})

	item := &domain.Item{ID: 8, ContentType: domain.ContentTypeArticle}
	result := &domain.ArticleResult{
		Images: []string{page, image},
		Videos: []string{page},
	}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	for _, got := range dl.calls {
		if got == page {
			t.Fatalf("untyped candidate %q reached the downloader", page)
		}
	}
	if len(ex.calls) != 0 {
		t.Errorf("untyped candidate must not reach the extractor, got %v", ex.calls)
	}
	if item.LocalVideoPath != "" {
		t.Errorf("no typed video candidate, got %q", item.LocalVideoPath)
	}
	if item.LocalImagePath == "" {
		t.Error("typed image candidate should still be acquired")
	}
	if len(item.Images) != 2 {
		t.Errorf("raw candidate list must be recorded as-is: %v", item.Images)
	}
}

func TestAcquireOversizedVideoFallsBackToImage(t *testing.T) {
	video := "https://cdn.example.com/huge.mp4"
	image := "https://cdn.example.com/preview.jpg"
	dl := &fakeDownloader{fail: map[string]error{video: ErrTooLarge}}
	m := newTestManager(t, dl, &fakeExtractor{}, &fakeVideoTool{duration: 30})

	item := &domain.Item{ID: 3, ContentType: domain.ContentTypeArticle}
	result := &domain.ArticleResult{Images: []string{image}, Videos: []string{video}}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if item.LocalVideoPath != "" {
		t.Errorf("oversized video must be skipped, got %q", item.LocalVideoPath)
	}
	if item.LocalImagePath == "" {
		t.Error("image fallback should have been acquired")
	}
}

func TestAcquireRejectsOverlongVideo(t *testing.T) {
	dl := &fakeDownloader{}
	m := newTestManager(t, dl, &fakeExtractor{}, &fakeVideoTool{duration: 601})

	item := &domain.Item{ID: 4, ContentType: domain.ContentTypeArticle}
	result := &domain.ArticleResult{Videos: []string{"https://cdn.example.com/marathon.mp4"}}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if item.LocalVideoPath != "" {
		t.Errorf("video past the duration cap must be rejected, got %q", item.LocalVideoPath)
	}
}

func TestAcquireReusesExistingArtifacts(t *testing.T) {
	dl := &fakeDownloader{}
	m := newTestManager(t, dl, &fakeExtractor{}, &fakeVideoTool{duration: 30})

	existing, err := writeArtifact(t.TempDir(), "kept.mp4")
	if err != nil {
		t.Fatal(err)
	}

	item := &domain.Item{ID: 5, ContentType: domain.ContentTypeSocialPost, LocalVideoPath: existing}
	result := &domain.ArticleResult{Videos: []string{"https://video.twimg.com/v.mp4"}}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if len(dl.calls) != 0 {
		t.Errorf("existing artifact must be reused, downloader got %v", dl.calls)
	}
	if item.LocalVideoPath != existing {
		t.Errorf("LocalVideoPath = %q, want %q", item.LocalVideoPath, existing)
	}
}

func TestAcquireForceRedownloads(t *testing.T) {
	dl := &fakeDownloader{}
	m := newTestManager(t, dl, &fakeExtractor{}, &fakeVideoTool{duration: 30})

	stale, err := writeArtifact(t.TempDir(), "stale.mp4")
	if err != nil {
		t.Fatal(err)
	}

	item := &domain.Item{ID: 6, ContentType: domain.ContentTypeArticle, LocalVideoPath: stale}
	result := &domain.ArticleResult{Videos: []string{"https://cdn.example.com/fresh.mp4"}}

	if err := m.Acquire(context.Background(), item, result, true); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if len(dl.calls) != 1 {
		t.Errorf("force must re-download, downloader calls = %v", dl.calls)
	}
	if item.LocalVideoPath == stale {
		t.Error("stale artifact path survived a forced acquisition")
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale artifact file should have been removed")
	}
}

func TestAcquireAppliesTrimOffset(t *testing.T) {
	dl := &fakeDownloader{}
	vt := &fakeVideoTool{duration: 30}
	m := newTestManager(t, dl, &fakeExtractor{}, vt)

	item := &domain.Item{ID: 7, ContentType: domain.ContentTypeArticle, VideoOffsetSec: 12}
	result := &domain.ArticleResult{Videos: []string{"https://cdn.example.com/clip.mp4"}}

	if err := m.Acquire(context.Background(), item, result, false); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if len(vt.trimCalls) != 1 || vt.trimCalls[0] != 12 {
		t.Errorf("trim calls = %v, want [12]", vt.trimCalls)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		ext  string
		typ  domain.MediaType
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0, 0, 0, 0, 0}, ".jpg", domain.MediaImage},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}, ".png", domain.MediaImage},
		{"mp4", []byte{0, 0, 0, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}, ".mp4", domain.MediaVideo},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0, 0, 0, 0, 0, 0, 0}, ".webm", domain.MediaVideo},
		{"webp", append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBP")...)...), ".webp", domain.MediaImage},
		{"html masquerading", []byte("<!DOCTYPE html>"), "", domain.MediaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, typ := formatOf(tt.head)
			if ext != tt.ext || typ != tt.typ {
				t.Errorf("formatOf = (%q, %s), want (%q, %s)", ext, typ, tt.ext, tt.typ)
			}
		})
	}
}
