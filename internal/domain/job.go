package domain

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gosimple/slug"
)

// Action selects what the tool downloads on this invocation
type Action string

const (
	ActionConfig   Action = ""         // Every playlist from the config file
	ActionQuick    Action = "quick"    // The quick download playlist
	ActionPlaylist Action = "playlist" // A playlist given on the command line
	ActionSong     Action = "song"     // A single song given on the command line
)

const (
	archiveFileSuffix  = "-downloaded-archive.txt"
	genericArchiveFile = ".downloaded-archive.txt"
)

var (
	ErrURLRequired      = errors.New("URL must be provided")
	ErrMalformedCommand = errors.New("malformed command/args")
	ErrMissingConfigKey = errors.New("missing config key")
)

// ActionNames lists every accepted spelling of an action
var ActionNames = []string{"quick", "q", "playlist", "pl", "song", "so"}

// ParseAction maps a command-line action (long or short form) to an Action
func ParseAction(s string) (Action, error) {
	switch s {
	case "":
		return ActionConfig, nil
	case "quick", "q":
		return ActionQuick, nil
	case "playlist", "pl":
		return ActionPlaylist, nil
	case "song", "so":
		return ActionSong, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrMalformedCommand, s)
	}
}

// NeedsURL reports whether the action takes its link from the command line
func (a Action) NeedsURL() bool {
	return a == ActionPlaylist || a == ActionSong
}

// Job is a fully specified download job
type Job struct {
	Link                  string
	DestinationDir        string
	ArchiveFilePath       string
	DownloadWholePlaylist bool
	Name                  string
}

// NewJob derives the destination directory and archive path for a link.
// A named job gets its own subdirectory of root and a slug-named archive file;
// an unnamed job saves straight into root.
func NewJob(link, root string, wholePlaylist bool, name string) *Job {
	job := &Job{
		Link:                  link,
		DownloadWholePlaylist: wholePlaylist,
		Name:                  name,
	}

	if name != "" {
		job.DestinationDir = filepath.Join(root, name)
		job.ArchiveFilePath = filepath.Join(job.DestinationDir, ArchiveFileName(name))
	} else {
		job.DestinationDir = root
		job.ArchiveFilePath = filepath.Join(job.DestinationDir, genericArchiveFile)
	}

	return job
}

// ArchiveFileName returns the hidden archive file name for a playlist name
func ArchiveFileName(name string) string {
	return "." + slug.Make(name) + archiveFileSuffix
}

// DisplayName returns the job name, falling back to its link
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Link
}
