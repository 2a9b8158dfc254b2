package domain

import "context"

// Downloader fetches the audio for a job into its destination directory
type Downloader interface {
	Download(ctx context.Context, job *Job) error
}

// ArtNormalizer square-crops and re-embeds the cover art of every pending
// file in a job's destination directory
type ArtNormalizer interface {
	Normalize(ctx context.Context, job *Job) (*NormalizeResult, error)
}
