package infrastructure

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/yourusername/music-manager-go/internal/domain"
	"go.uber.org/zap"
)

// Temporary cover images, written next to the audio files
const (
	UncroppedArtName = "tmp-art-uncropped.jpg"
	CroppedArtName   = "tmp-art-cropped.jpg"
)

// ArtNormalizer implements domain.ArtNormalizer with ffmpeg and imaging
type ArtNormalizer struct {
	ffmpeg   *FFmpeg
	prefix   string
	ext      string
	progress io.Writer
	logger   *zap.Logger
}

// NewArtNormalizer creates a normalizer for files named <prefix>...<ext>.
// progress receives a progress bar; nil disables it.
func NewArtNormalizer(ffmpeg *FFmpeg, prefix, ext string, progress io.Writer, logger *zap.Logger) *ArtNormalizer {
	return &ArtNormalizer{
		ffmpeg:   ffmpeg,
		prefix:   prefix,
		ext:      ext,
		progress: progress,
		logger:   logger,
	}
}

// FindPending lists the pending files in dir, sorted by name
func (n *ArtNormalizer) FindPending(dir string) ([]domain.PendingFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var pending []domain.PendingFile
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsPendingName(entry.Name(), n.prefix, n.ext) {
			continue
		}
		pending = append(pending, domain.PendingFile{Dir: dir, Name: entry.Name(), Prefix: n.prefix})
	}
	return pending, nil
}

// Normalize fixes the cover art of every pending file in the job's directory.
// A file that fails keeps its pending name so the next run picks it up again;
// the remaining files are still processed.
func (n *ArtNormalizer) Normalize(ctx context.Context, job *domain.Job) (*domain.NormalizeResult, error) {
	result := &domain.NormalizeResult{}

	pending, err := n.FindPending(job.DestinationDir)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		n.logger.Debug("No pending files", zap.String("dir", job.DestinationDir))
		return result, nil
	}

	bar := n.newProgressBar(len(pending))
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		track, err := n.normalizeFile(ctx, p)
		if err != nil {
			n.logger.Warn("Failed to fix album art",
				zap.String("file", p.Name),
				zap.Error(err))
			result.Failures = append(result.Failures, domain.ArtFailure{File: p.Name, Err: err})
		} else {
			n.logger.Debug("Fixed album art",
				zap.String("file", track.Path),
				zap.String("title", track.Title),
				zap.String("artist", track.Artist),
				zap.Bool("has_cover", track.HasCover))
			result.Tracks = append(result.Tracks, track)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	abs, err := filepath.Abs(job.DestinationDir)
	if err != nil {
		abs = job.DestinationDir
	}
	n.logger.Info(fmt.Sprintf("Fixed album art in %s", abs),
		zap.Int("fixed", len(result.Tracks)),
		zap.Int("failed", len(result.Failures)))

	if len(result.Failures) > 0 {
		return result, fmt.Errorf("album art failed for %d of %d files", len(result.Failures), len(pending))
	}
	return result, nil
}

// normalizeFile extracts, crops and re-embeds the cover of one pending file,
// then removes the prefixed original
func (n *ArtNormalizer) normalizeFile(ctx context.Context, p domain.PendingFile) (domain.Track, error) {
	src := filepath.Join(p.Dir, p.Name)
	uncropped := filepath.Join(p.Dir, UncroppedArtName)
	cropped := filepath.Join(p.Dir, CroppedArtName)
	final := filepath.Join(p.Dir, p.FinalName())

	defer func() {
		os.Remove(uncropped)
		os.Remove(cropped)
	}()

	if err := n.ffmpeg.ExtractCover(ctx, src, uncropped); err != nil {
		return domain.Track{}, fmt.Errorf("extract cover: %w", err)
	}

	if _, err := CropCover(uncropped, cropped); err != nil {
		return domain.Track{}, fmt.Errorf("crop cover: %w", err)
	}

	if err := n.ffmpeg.EmbedCover(ctx, src, cropped, final); err != nil {
		os.Remove(final)
		return domain.Track{}, fmt.Errorf("embed cover: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return domain.Track{}, fmt.Errorf("remove original: %w", err)
	}

	return ReadTrack(final), nil
}

func (n *ArtNormalizer) newProgressBar(total int) *progressbar.ProgressBar {
	w := n.progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("album art"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// CropCover square-crops the image at src around its center and saves it to dst.
// The output format follows dst's extension.
func CropCover(src, dst string) (image.Rectangle, error) {
	img, err := imaging.Open(src)
	if err != nil {
		return image.Rectangle{}, err
	}

	bounds := img.Bounds()
	box := domain.SquareCrop(bounds.Dx(), bounds.Dy()).Add(bounds.Min)

	if err := imaging.Save(imaging.Crop(img, box), dst); err != nil {
		return image.Rectangle{}, err
	}
	return box, nil
}
