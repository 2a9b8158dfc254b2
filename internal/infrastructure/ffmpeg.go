package infrastructure

import (
	"context"

	"github.com/yourusername/music-manager-go/internal/domain"
)

// Cover stream tags written when re-embedding art
const (
	CoverTitle   = "title=Album cover"
	CoverComment = "comment=Cover (front)"
	ID3v2Version = "3"
)

// FFmpeg wraps the ffmpeg invocations used for cover art
type FFmpeg struct {
	binary string
	runner CommandRunner
}

// NewFFmpeg creates an ffmpeg wrapper for the configured binary
func NewFFmpeg(config *domain.ToolsConfig, runner CommandRunner) *FFmpeg {
	return &FFmpeg{binary: config.FFmpegBinary, runner: runner}
}

// ExtractCoverArgs builds the args that copy the embedded picture of audioPath to imagePath
func (f *FFmpeg) ExtractCoverArgs(audioPath, imagePath string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", audioPath,
		"-an",
		"-c:v", "copy",
		imagePath,
	}
}

// EmbedCoverArgs builds the args that write audioPath's audio stream plus
// imagePath as front cover into outputPath
func (f *FFmpeg) EmbedCoverArgs(audioPath, imagePath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", audioPath,
		"-i", imagePath,
		"-map", "0:a",
		"-map", "1:0",
		"-c", "copy",
		"-id3v2_version", ID3v2Version,
		"-metadata:s:v", CoverTitle,
		"-metadata:s:v", CoverComment,
		outputPath,
	}
}

// ExtractCover writes the embedded cover of audioPath to imagePath
func (f *FFmpeg) ExtractCover(ctx context.Context, audioPath, imagePath string) error {
	return f.runner.Run(ctx, f.binary, f.ExtractCoverArgs(audioPath, imagePath)...)
}

// EmbedCover writes a copy of audioPath with imagePath as its cover to outputPath
func (f *FFmpeg) EmbedCover(ctx context.Context, audioPath, imagePath, outputPath string) error {
	return f.runner.Run(ctx, f.binary, f.EmbedCoverArgs(audioPath, imagePath, outputPath)...)
}
