package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// Acquisition failure sentinels. They mark a candidate as unusable, not
// the item as failed; the caller moves on to the next candidate.
var (
	ErrTooLarge   = errors.New("media exceeds size cap")
	ErrBadPayload = errors.New("payload is not a recognized media format")
)

// Downloader fetches a direct asset URL into a local file
type Downloader interface {
	Download(ctx context.Context, rawURL, destDir string, maxBytes int64, want domain.MediaType) (string, error)
}

// HTTPDownloader downloads assets over plain HTTP. Every byte lands in a
// hidden temp file first; the final name only exists once the payload has
// passed the size and format checks.
type HTTPDownloader struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPDownloader creates a downloader with the given per-download timeout
func NewHTTPDownloader(client *http.Client, logger *slog.Logger) *HTTPDownloader {
	return &HTTPDownloader{client: client, logger: logger}
}

// Download fetches rawURL into destDir, enforcing maxBytes and verifying
// the payload's magic bytes match the wanted media type. Returns the
// promoted file path.
func (d *HTTPDownloader) Download(ctx context.Context, rawURL, destDir string, maxBytes int64, want domain.MediaType) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download HTTP error: %d", resp.StatusCode)
	}

	// Cheap rejection before any bytes are written
	if resp.ContentLength > 0 && resp.ContentLength > maxBytes {
		d.logger.Warn("Media rejected by Content-Length",
			"url", rawURL,
			"content_length", resp.ContentLength,
			"max_bytes", maxBytes,
		)
		return "", ErrTooLarge
	}

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	// Hard cap regardless of what Content-Length claimed
	written, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("download copy failed: %w", err)
	}
	if written > maxBytes {
		d.logger.Warn("Media rejected mid-download",
			"url", rawURL,
			"max_bytes", maxBytes,
		)
		return "", ErrTooLarge
	}

	ext, err := sniffFormat(tmpPath, want)
	if err != nil {
		return "", err
	}

	final := filepath.Join(destDir, fileStem(rawURL)+ext)
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("failed to promote download: %w", err)
	}

	d.logger.Info("Media downloaded",
		"url", rawURL,
		"path", final,
		"bytes", written,
	)
	return final, nil
}

// fileStem derives a stable local filename from the source URL
func fileStem(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:8])
}

// sniffFormat reads the payload head and returns the extension its magic
// bytes dictate. A payload whose real format disagrees with the wanted
// media type (an HTML error page saved as .mp4, say) is rejected here.
func sniffFormat(path string, want domain.MediaType) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to reopen download: %w", err)
	}
	defer f.Close()

	head := make([]byte, 16)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read download head: %w", err)
	}
	head = head[:n]

	ext, typ := formatOf(head)
	if typ == domain.MediaUnknown {
		return "", ErrBadPayload
	}
	if want != domain.MediaUnknown && typ != want {
		return "", fmt.Errorf("%w: got %s, wanted %s", ErrBadPayload, typ, want)
	}
	return ext, nil
}

func formatOf(head []byte) (string, domain.MediaType) {
	switch {
	case len(head) >= 3 && bytes.Equal(head[:3], []byte{0xFF, 0xD8, 0xFF}):
		return ".jpg", domain.MediaImage
	case len(head) >= 8 && bytes.Equal(head[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return ".png", domain.MediaImage
	case len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a"))):
		return ".gif", domain.MediaImage
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return ".webp", domain.MediaImage
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return ".mp4", domain.MediaVideo
	case len(head) >= 4 && bytes.Equal(head[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ".webm", domain.MediaVideo
	}
	return "", domain.MediaUnknown
}
