package infrastructure

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/yourusername/music-manager-go/internal/domain"
)

// ReadTrack reads title, artist, album and cover presence from an audio file's
// tags. Missing or unreadable tags fall back to the file name for the title.
func ReadTrack(path string) domain.Track {
	track := domain.Track{Path: path}

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		if meta, err := tag.ReadFrom(file); err == nil {
			track.Title = meta.Title()
			track.Artist = meta.Artist()
			track.Album = meta.Album()
			track.HasCover = meta.Picture() != nil
		}
	}

	if track.Title == "" {
		name := filepath.Base(path)
		track.Title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return track
}
