package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Extractor resolves an indirect embed (a player page or manifest) into a
// downloaded local video file
type Extractor interface {
	Extract(ctx context.Context, pageURL, destDir string) (string, error)
}

// YtdlpExtractor shells out to yt-dlp. It is the last resort for video
// acquisition: tweet permalinks, brightcove player pages and HLS manifests
// all go through it.
type YtdlpExtractor struct {
	binary   string
	maxBytes int64
	logger   *slog.Logger
}

// NewYtdlpExtractor creates an extractor using the given yt-dlp binary
func NewYtdlpExtractor(binary string, maxBytes int64, logger *slog.Logger) *YtdlpExtractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YtdlpExtractor{binary: binary, maxBytes: maxBytes, logger: logger}
}

// Extract downloads the video behind pageURL into destDir and returns the
// resulting file path. yt-dlp picks the output name; we find it by diffing
// against its own --print after-move output.
func (e *YtdlpExtractor) Extract(ctx context.Context, pageURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	outTemplate := filepath.Join(destDir, fileStem(pageURL)+".%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-progress",
		"-f", "mp4/bestvideo*+bestaudio/best",
		"--max-filesize", fmt.Sprintf("%d", e.maxBytes),
		"-o", outTemplate,
		"--print", "after_move:filepath",
		pageURL,
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		e.logger.Warn("yt-dlp extraction failed",
			"url", pageURL,
			"error", err,
			"stderr", stderr,
		)
		return "", fmt.Errorf("yt-dlp failed for %s: %w", pageURL, err)
	}

	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("yt-dlp produced no file for %s", pageURL)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp reported missing file %s: %w", path, err)
	}

	e.logger.Info("Indirect video extracted",
		"url", pageURL,
		"path", path,
	)
	return path, nil
}
