package domain

import (
	"image"
	"strings"
)

// SquareCrop returns the centered square crop box for a w x h cover image.
// Landscape images keep their full height: left = (w-h)/2, box = [left, 0, left+h, h].
// Portrait images keep their full width and are centered vertically.
func SquareCrop(w, h int) image.Rectangle {
	if w >= h {
		left := (w - h) / 2
		return image.Rect(left, 0, left+h, h)
	}
	top := (h - w) / 2
	return image.Rect(0, top, w, top+w)
}

// PendingFile is a downloaded audio file whose cover art is not normalized yet
type PendingFile struct {
	Dir    string
	Name   string
	Prefix string
}

// IsPendingName reports whether a file name carries the pending prefix and
// the audio extension
func IsPendingName(name, prefix, ext string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext) && len(name) > len(prefix)+len(ext)
}

// FinalName is the file name with the pending prefix stripped
func (p PendingFile) FinalName() string {
	return strings.TrimPrefix(p.Name, p.Prefix)
}

// Track describes a normalized audio file as read back from its tags
type Track struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	RunID    string `json:"run_id" gorm:"index"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	HasCover bool   `json:"has_cover"`
}

// ArtFailure records a pending file that could not be normalized
type ArtFailure struct {
	File string
	Err  error
}

// NormalizeResult is the outcome of one art normalization pass over a directory
type NormalizeResult struct {
	Tracks   []Track
	Failures []ArtFailure
}
