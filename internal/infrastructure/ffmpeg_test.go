package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/music-manager-go/internal/domain"
)

func TestFFmpeg_ExtractCoverArgs(t *testing.T) {
	ff := NewFFmpeg(&domain.ToolsConfig{FFmpegBinary: "ffmpeg"}, nil)

	args := ff.ExtractCoverArgs("/m/+a.mp3", "/m/tmp-art-uncropped.jpg")

	assert.Equal(t, []string{
		"-hide_banner", "-y",
		"-i", "/m/+a.mp3",
		"-an",
		"-c:v", "copy",
		"/m/tmp-art-uncropped.jpg",
	}, args)
}

func TestFFmpeg_EmbedCoverArgs(t *testing.T) {
	ff := NewFFmpeg(&domain.ToolsConfig{FFmpegBinary: "ffmpeg"}, nil)

	args := ff.EmbedCoverArgs("/m/+a.mp3", "/m/tmp-art-cropped.jpg", "/m/a.mp3")

	assert.Equal(t, []string{
		"-hide_banner", "-y",
		"-i", "/m/+a.mp3",
		"-i", "/m/tmp-art-cropped.jpg",
		"-map", "0:a",
		"-map", "1:0",
		"-c", "copy",
		"-id3v2_version", "3",
		"-metadata:s:v", "title=Album cover",
		"-metadata:s:v", "comment=Cover (front)",
		"/m/a.mp3",
	}, args)
}

func TestFFmpeg_UsesConfiguredBinary(t *testing.T) {
	runner := &recordingRunner{}
	ff := NewFFmpeg(&domain.ToolsConfig{FFmpegBinary: "/opt/ffmpeg/bin/ffmpeg"}, runner)

	require.NoError(t, ff.ExtractCover(context.Background(), "in.mp3", "out.jpg"))
	require.NoError(t, ff.EmbedCover(context.Background(), "in.mp3", "out.jpg", "final.mp3"))

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", runner.calls[0].binary)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", runner.calls[1].binary)
}
