package infrastructure

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/music-manager-go/internal/domain"
	"go.uber.org/zap"
)

// writeCover saves a w x h JPEG whose centered square is green and whose
// remaining area is red
func writeCover(t *testing.T, path string, w, h int) {
	t.Helper()
	box := domain.SquareCrop(w, h)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(box) {
				img.Set(x, y, color.NRGBA{G: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			}
		}
	}
	require.NoError(t, imaging.Save(img, path))
}

// fakeFFmpeg simulates ffmpeg: extraction writes a cover of the given size,
// embedding copies the audio file and remembers the cropped cover's bounds
type fakeFFmpeg struct {
	t            *testing.T
	coverW       int
	coverH       int
	embedded     []image.Rectangle
	failExtract  string
	failEmbed    string
	extractCalls int
	embedCalls   int
}

func (f *fakeFFmpeg) act(binary string, args []string) error {
	input := argAfter(args, "-i")
	output := args[len(args)-1]

	if hasArg(args, "-an") {
		f.extractCalls++
		if f.failExtract != "" && filepath.Base(input) == f.failExtract {
			return errors.New("exit status 1")
		}
		writeCover(f.t, output, f.coverW, f.coverH)
		return nil
	}

	f.embedCalls++
	if f.failEmbed != "" && filepath.Base(input) == f.failEmbed {
		// a failing encode may leave a truncated output behind
		_ = os.WriteFile(output, []byte("partial"), 0644)
		return errors.New("exit status 1")
	}

	cover, err := imaging.Open(args[indexOf(args, "-i", 2)+1])
	require.NoError(f.t, err)
	f.embedded = append(f.embedded, cover.Bounds())

	data, err := os.ReadFile(input)
	require.NoError(f.t, err)
	return os.WriteFile(output, data, 0644)
}

func hasArg(args []string, want string) bool {
	return indexOf(args, want, 1) >= 0
}

func argAfter(args []string, flag string) string {
	i := indexOf(args, flag, 1)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

// indexOf returns the index of the nth occurrence of want in args, or -1
func indexOf(args []string, want string, nth int) int {
	for i, arg := range args {
		if arg == want {
			nth--
			if nth == 0 {
				return i
			}
		}
	}
	return -1
}

func newTestNormalizer(t *testing.T, fake *fakeFFmpeg) (*ArtNormalizer, *recordingRunner) {
	runner := &recordingRunner{act: fake.act}
	ff := NewFFmpeg(&domain.ToolsConfig{FFmpegBinary: "ffmpeg"}, runner)
	return NewArtNormalizer(ff, "+", ".mp3", nil, zap.NewNop()), runner
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCropCover_Landscape(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, UncroppedArtName)
	dst := filepath.Join(dir, CroppedArtName)
	writeCover(t, src, 1280, 720)

	box, err := CropCover(src, dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(280, 0, 1000, 720), box)

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 720, out.Bounds().Dx())
	assert.Equal(t, 720, out.Bounds().Dy())

	// the crop only contains the green center square
	for _, pt := range []image.Point{{40, 40}, {680, 40}, {40, 680}, {680, 680}, {360, 360}} {
		r, g, _, _ := out.At(pt.X, pt.Y).RGBA()
		assert.Greater(t, g>>8, uint32(200), "green at %v", pt)
		assert.Less(t, r>>8, uint32(60), "red at %v", pt)
	}
}

func TestCropCover_Portrait(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, UncroppedArtName)
	dst := filepath.Join(dir, CroppedArtName)
	writeCover(t, src, 300, 500)

	box, err := CropCover(src, dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 100, 300, 400), box)

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
}

func TestCropCover_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CropCover(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "out.jpg"))
	require.Error(t, err)
}

func TestArtNormalizer_FindPending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "+b song id2.mp3", "b")
	writeFile(t, dir, "+a song id1.mp3", "a")
	writeFile(t, dir, "done id3.mp3", "c")
	writeFile(t, dir, "+partial id4.webm", "d")
	writeFile(t, dir, ".downloaded-archive.txt", "youtube id1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "+folder.mp3"), 0755))

	normalizer, _ := newTestNormalizer(t, &fakeFFmpeg{t: t})

	pending, err := normalizer.FindPending(dir)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "+a song id1.mp3", pending[0].Name)
	assert.Equal(t, "+b song id2.mp3", pending[1].Name)
	assert.Equal(t, "a song id1.mp3", pending[0].FinalName())
}

func TestArtNormalizer_NoPendingFilesIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "already fixed id1.mp3", "audio")
	writeFile(t, dir, ".downloaded-archive.txt", "youtube id1\n")

	normalizer, runner := newTestNormalizer(t, &fakeFFmpeg{t: t})

	result, err := normalizer.Normalize(context.Background(), &domain.Job{DestinationDir: dir})
	require.NoError(t, err)
	assert.Empty(t, result.Tracks)
	assert.Empty(t, result.Failures)
	assert.Empty(t, runner.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestArtNormalizer_Normalize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "+First Song id1.mp3", "audio-1")
	writeFile(t, dir, "+Second Song id2.mp3", "audio-2")

	fake := &fakeFFmpeg{t: t, coverW: 1280, coverH: 720}
	normalizer, runner := newTestNormalizer(t, fake)

	result, err := normalizer.Normalize(context.Background(), &domain.Job{DestinationDir: dir})
	require.NoError(t, err)

	require.Len(t, result.Tracks, 2)
	assert.Empty(t, result.Failures)
	assert.Equal(t, filepath.Join(dir, "First Song id1.mp3"), result.Tracks[0].Path)
	assert.Equal(t, "First Song id1", result.Tracks[0].Title)
	assert.Equal(t, filepath.Join(dir, "Second Song id2.mp3"), result.Tracks[1].Path)

	// extract + embed per file
	assert.Len(t, runner.calls, 4)
	assert.Equal(t, 2, fake.extractCalls)
	assert.Equal(t, 2, fake.embedCalls)
	require.Len(t, fake.embedded, 2)
	for _, bounds := range fake.embedded {
		assert.Equal(t, 720, bounds.Dx())
		assert.Equal(t, 720, bounds.Dy())
	}

	// only the final files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"First Song id1.mp3", "Second Song id2.mp3"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "First Song id1.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "audio-1", string(data))
}

func TestArtNormalizer_ExtractFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "+Broken id1.mp3", "audio-1")
	writeFile(t, dir, "+Fine id2.mp3", "audio-2")

	fake := &fakeFFmpeg{t: t, coverW: 640, coverH: 480, failExtract: "+Broken id1.mp3"}
	normalizer, _ := newTestNormalizer(t, fake)

	result, err := normalizer.Normalize(context.Background(), &domain.Job{DestinationDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files")

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "+Broken id1.mp3", result.Failures[0].File)
	assert.Contains(t, result.Failures[0].Err.Error(), "extract cover")
	require.Len(t, result.Tracks, 1)
	assert.Equal(t, filepath.Join(dir, "Fine id2.mp3"), result.Tracks[0].Path)

	assert.FileExists(t, filepath.Join(dir, "+Broken id1.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "Broken id1.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, UncroppedArtName))
	assert.NoFileExists(t, filepath.Join(dir, CroppedArtName))
}

func TestArtNormalizer_EmbedFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "+Song id1.mp3", "audio-1")

	fake := &fakeFFmpeg{t: t, coverW: 1280, coverH: 720, failEmbed: "+Song id1.mp3"}
	normalizer, _ := newTestNormalizer(t, fake)

	result, err := normalizer.Normalize(context.Background(), &domain.Job{DestinationDir: dir})
	require.Error(t, err)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Err.Error(), "embed cover")

	assert.FileExists(t, filepath.Join(dir, "+Song id1.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "Song id1.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, UncroppedArtName))
	assert.NoFileExists(t, filepath.Join(dir, CroppedArtName))
}

func TestArtNormalizer_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "+Song id1.mp3", "audio-1")

	normalizer, runner := newTestNormalizer(t, &fakeFFmpeg{t: t, coverW: 10, coverH: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := normalizer.Normalize(ctx, &domain.Job{DestinationDir: dir})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.calls)
	assert.FileExists(t, filepath.Join(dir, "+Song id1.mp3"))
}

func TestArtNormalizer_MissingDirectory(t *testing.T) {
	normalizer, _ := newTestNormalizer(t, &fakeFFmpeg{t: t})

	_, err := normalizer.Normalize(context.Background(), &domain.Job{DestinationDir: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
