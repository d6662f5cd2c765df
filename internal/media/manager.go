package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// Manager turns the raw media candidate lists of a resolution into local
// artifacts. Failures here degrade the item, they never fail it: an
// article with no usable media still resolves.
type Manager struct {
	cfg        config.MediaConfig
	downloader Downloader
	extractor  Extractor
	video      VideoTool
	logger     *slog.Logger
}

// NewManager creates a media manager with explicit tool implementations
func NewManager(cfg config.MediaConfig, downloader Downloader, extractor Extractor, video VideoTool, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		downloader: downloader,
		extractor:  extractor,
		video:      video,
		logger:     logger,
	}
}

// NewDefaultManager wires the manager with the real HTTP, yt-dlp and
// ffmpeg backends.
func NewDefaultManager(cfg config.MediaConfig, logger *slog.Logger) *Manager {
	client := &http.Client{Timeout: cfg.DownloadTimeout()}
	return NewManager(cfg,
		NewHTTPDownloader(client, logger),
		NewYtdlpExtractor(cfg.YtdlpPath, cfg.MaxVideoBytes(), logger),
		NewFFmpegTool(cfg.FFprobePath, cfg.FFmpegPath, logger),
		logger,
	)
}

// Acquire downloads media for a resolved item. The raw candidate lists are
// recorded on the item as-is; local paths are only ever set to verified
// files on disk. For social posts a successful video acquisition
// suppresses the image entirely.
//
// Candidate failures are logged and skipped. Only context cancellation
// aborts the whole acquisition.
func (m *Manager) Acquire(ctx context.Context, item *domain.Item, result *domain.ArticleResult, force bool) error {
	item.Images = result.Images
	item.Videos = result.Videos

	if force {
		m.discardArtifacts(item)
	}

	if err := m.acquireVideo(ctx, item, result.Videos); err != nil {
		return err
	}

	wantImage := !(item.IsSocialPost() && item.LocalVideoPath != "")
	if wantImage {
		if err := m.acquireImage(ctx, item, result.Images); err != nil {
			return err
		}
	} else if item.LocalImagePath != "" {
		// Video arrived on a re-run; the stale preview image loses
		m.discardFile(item.LocalImagePath)
		item.LocalImagePath = ""
	}

	item.AvatarPath = m.findLogo(item.Source)

	m.logger.Info("Media acquisition finished",
		"item_id", item.ID,
		"has_video", item.LocalVideoPath != "",
		"has_image", item.LocalImagePath != "",
		"has_avatar", item.AvatarPath != "",
	)
	return nil
}

func (m *Manager) acquireVideo(ctx context.Context, item *domain.Item, candidates []string) error {
	if item.LocalVideoPath != "" && fileExists(item.LocalVideoPath) {
		m.logger.Debug("Reusing existing video artifact", "item_id", item.ID, "path", item.LocalVideoPath)
		return nil
	}
	item.LocalVideoPath = ""

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if DetectType(candidate) != domain.MediaVideo {
			continue
		}

		path, err := m.fetchVideo(ctx, candidate)
		if err != nil {
			m.logger.Warn("Video candidate rejected",
				"item_id", item.ID,
				"url", candidate,
				"error", err,
			)
			continue
		}

		if err := m.checkDuration(ctx, path); err != nil {
			m.logger.Warn("Video candidate rejected",
				"item_id", item.ID,
				"url", candidate,
				"error", err,
			)
			m.discardFile(path)
			continue
		}

		if item.VideoOffsetSec > 0 {
			if err := m.video.Trim(ctx, path, item.VideoOffsetSec); err != nil {
				// Keep the untrimmed video rather than lose it
				m.logger.Warn("Trim failed, keeping full video",
					"item_id", item.ID,
					"offset_sec", item.VideoOffsetSec,
					"error", err,
				)
			}
		}

		item.LocalVideoPath = path
		return nil
	}
	return nil
}

func (m *Manager) fetchVideo(ctx context.Context, candidate string) (string, error) {
	if IsIndirect(candidate) {
		return m.extractor.Extract(ctx, candidate, m.cfg.Dir)
	}
	return m.downloader.Download(ctx, candidate, m.cfg.Dir, m.cfg.MaxVideoBytes(), domain.MediaVideo)
}

func (m *Manager) checkDuration(ctx context.Context, path string) error {
	if m.cfg.MaxVideoDurationSec <= 0 {
		return nil
	}
	seconds, err := m.video.Duration(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to probe duration: %w", err)
	}
	if seconds > float64(m.cfg.MaxVideoDurationSec) {
		return fmt.Errorf("%w: %.0fs > %ds", ErrTooLong, seconds, m.cfg.MaxVideoDurationSec)
	}
	return nil
}

func (m *Manager) acquireImage(ctx context.Context, item *domain.Item, candidates []string) error {
	if item.LocalImagePath != "" && fileExists(item.LocalImagePath) {
		m.logger.Debug("Reusing existing image artifact", "item_id", item.ID, "path", item.LocalImagePath)
		return nil
	}
	item.LocalImagePath = ""

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if DetectType(candidate) != domain.MediaImage {
			continue
		}

		path, err := m.downloader.Download(ctx, candidate, m.cfg.Dir, m.cfg.MaxImageBytes(), domain.MediaImage)
		if err != nil {
			m.logger.Warn("Image candidate rejected",
				"item_id", item.ID,
				"url", candidate,
				"error", err,
			)
			continue
		}

		item.LocalImagePath = path
		return nil
	}
	return nil
}

// findLogo looks up a publisher logo shipped in the logo directory
func (m *Manager) findLogo(source string) string {
	if source == "" || m.cfg.LogoDir == "" {
		return ""
	}

	stem := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(source), " ", "_"))
	for _, ext := range []string{".png", ".jpg", ".webp"} {
		candidate := filepath.Join(m.cfg.LogoDir, stem+ext)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func (m *Manager) discardArtifacts(item *domain.Item) {
	m.discardFile(item.LocalVideoPath)
	m.discardFile(item.LocalImagePath)
	item.LocalVideoPath = ""
	item.LocalImagePath = ""
}

func (m *Manager) discardFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("Failed to remove stale artifact", "path", path, "error", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
