package domain

// JobRunRepository defines the interface for run history persistence
type JobRunRepository interface {
	// Create creates a new run
	Create(run *JobRun) error

	// Update updates an existing run
	Update(run *JobRun) error

	// FindByID finds a run by ID
	FindByID(id string) (*JobRun, error)

	// FindRecent returns the most recent runs, newest first
	FindRecent(limit int) ([]*JobRun, error)

	// AddTracks stores the tracks normalized by a run
	AddTracks(runID string, tracks []Track) error

	// FindTracks returns the tracks normalized by a run
	FindTracks(runID string) ([]Track, error)

	// GetStats returns run statistics
	GetStats() (*RunStats, error)
}

// RunStats represents run history statistics
type RunStats struct {
	Total      int64 `json:"total"`
	Running    int64 `json:"running"`
	Completed  int64 `json:"completed"`
	Partial    int64 `json:"partial"`
	Failed     int64 `json:"failed"`
	Normalized int64 `json:"normalized"`
}
