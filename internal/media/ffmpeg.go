package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrTooLong marks a video candidate rejected for exceeding the duration cap
var ErrTooLong = errors.New("video exceeds duration cap")

// VideoTool inspects and edits downloaded video files
type VideoTool interface {
	Duration(ctx context.Context, path string) (float64, error)
	Trim(ctx context.Context, path string, offsetSec int) error
}

// FFmpegTool wraps the ffprobe/ffmpeg binaries
type FFmpegTool struct {
	ffprobe string
	ffmpeg  string
	logger  *slog.Logger
}

// NewFFmpegTool creates a video tool using the given binaries
func NewFFmpegTool(ffprobe, ffmpeg string, logger *slog.Logger) *FFmpegTool {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &FFmpegTool{ffprobe: ffprobe, ffmpeg: ffmpeg, logger: logger}
}

// Duration returns the container duration in seconds
func (t *FFmpegTool) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return seconds, nil
}

// Trim drops the first offsetSec seconds of the video in place. Stream
// copy keeps it fast; the cut lands on the nearest keyframe.
func (t *FFmpegTool) Trim(ctx context.Context, path string, offsetSec int) error {
	if offsetSec <= 0 {
		return nil
	}

	trimmed := path + ".trim"
	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-y",
		"-ss", strconv.Itoa(offsetSec),
		"-i", path,
		"-c", "copy",
		"-f", "mp4",
		trimmed,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(trimmed)
		t.logger.Warn("ffmpeg trim failed",
			"path", path,
			"offset_sec", offsetSec,
			"output", truncateOutput(out),
		)
		return fmt.Errorf("ffmpeg trim failed for %s: %w", path, err)
	}

	if err := os.Rename(trimmed, path); err != nil {
		os.Remove(trimmed)
		return fmt.Errorf("failed to replace trimmed video: %w", err)
	}

	t.logger.Info("Video trimmed", "path", path, "offset_sec", offsetSec)
	return nil
}

func truncateOutput(out []byte) string {
	s := string(out)
	if len(s) > 400 {
		return s[len(s)-400:]
	}
	return s
}
