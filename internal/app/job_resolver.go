package app

import (
	"fmt"
	"os"

	"github.com/yourusername/music-manager-go/internal/domain"
)

// JobResolver turns config entries and command-line overrides into jobs
type JobResolver struct {
	config *domain.Config
}

// NewJobResolver creates a new job resolver
func NewJobResolver(config *domain.Config) *JobResolver {
	return &JobResolver{config: config}
}

// Resolve returns the jobs for an action and an optional URL.
// Nothing is touched on disk; call Prepare before running a job.
func (r *JobResolver) Resolve(action domain.Action, url string) ([]*domain.Job, error) {
	switch action {
	case domain.ActionConfig:
		return r.configJobs()

	case domain.ActionQuick:
		if r.config.QuickDownloadPlaylistLink == "" {
			return nil, fmt.Errorf("%w: quickDownloadPlaylistLink", domain.ErrMissingConfigKey)
		}
		return []*domain.Job{domain.NewJob(r.config.QuickDownloadPlaylistLink, r.config.AdHocSavePath, true, "")}, nil

	case domain.ActionPlaylist, domain.ActionSong:
		if url == "" {
			return nil, domain.ErrURLRequired
		}
		return []*domain.Job{domain.NewJob(url, r.config.AdHocSavePath, action == domain.ActionPlaylist, "")}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrMalformedCommand, action)
	}
}

// configJobs builds one whole-playlist job per configured playlist
func (r *JobResolver) configJobs() ([]*domain.Job, error) {
	if r.config.SavePathRoot == "" {
		return nil, fmt.Errorf("%w: savePathRoot", domain.ErrMissingConfigKey)
	}
	if len(r.config.Playlists) == 0 {
		return nil, fmt.Errorf("%w: playlist", domain.ErrMissingConfigKey)
	}

	jobs := make([]*domain.Job, 0, len(r.config.Playlists))
	for _, playlist := range r.config.Playlists {
		jobs = append(jobs, domain.NewJob(playlist.Link, r.config.SavePathRoot, true, playlist.Name))
	}
	return jobs, nil
}

// Prepare creates the job's destination directory if absent
func (r *JobResolver) Prepare(job *domain.Job) error {
	if err := os.MkdirAll(job.DestinationDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", job.DestinationDir, err)
	}
	return nil
}
