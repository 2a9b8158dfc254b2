package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/music-manager-go/internal/domain"
	"go.uber.org/zap"
)

// outputTemplate is the yt-dlp file name template; the pending prefix goes in front
const outputTemplate = "%(title)s %(id)s.%(ext)s"

// YTDLPDownloader implements domain.Downloader with the yt-dlp binary
type YTDLPDownloader struct {
	config        *domain.ToolsConfig
	pendingPrefix string
	runner        CommandRunner
	logger        *zap.Logger
}

// NewYTDLPDownloader creates a new yt-dlp downloader
func NewYTDLPDownloader(config *domain.ToolsConfig, pendingPrefix string, runner CommandRunner, logger *zap.Logger) *YTDLPDownloader {
	return &YTDLPDownloader{
		config:        config,
		pendingPrefix: pendingPrefix,
		runner:        runner,
		logger:        logger,
	}
}

// BuildArgs builds the yt-dlp argument list for a job.
// Files land in the destination directory carrying the pending prefix and
// with the thumbnail embedded, ready for the art normalizer.
func (d *YTDLPDownloader) BuildArgs(job *domain.Job) []string {
	playlistFlag := "--no-playlist"
	if job.DownloadWholePlaylist {
		playlistFlag = "--yes-playlist"
	}

	return []string{
		"--extract-audio",
		"--audio-quality", d.config.AudioQuality,
		"--audio-format", d.config.AudioFormat,
		"--ignore-errors",
		"--add-metadata",
		"--download-archive", job.ArchiveFilePath,
		playlistFlag,
		"--no-post-overwrites",
		"--embed-thumbnail",
		"--output", filepath.Join(job.DestinationDir, d.pendingPrefix+outputTemplate),
		job.Link,
	}
}

// Download runs yt-dlp for the job
func (d *YTDLPDownloader) Download(ctx context.Context, job *domain.Job) error {
	if job.Link == "" {
		return fmt.Errorf("job has no link")
	}

	if err := os.MkdirAll(job.DestinationDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	d.logger.Info("Starting download",
		zap.String("job", job.DisplayName()),
		zap.String("link", job.Link),
		zap.Bool("whole_playlist", job.DownloadWholePlaylist))

	if err := d.runner.Run(ctx, d.config.YTDLPBinary, d.BuildArgs(job)...); err != nil {
		return err
	}

	abs, err := filepath.Abs(job.DestinationDir)
	if err != nil {
		abs = job.DestinationDir
	}
	d.logger.Info(fmt.Sprintf("Download to %s finished.", abs), zap.String("job", job.DisplayName()))
	return nil
}
