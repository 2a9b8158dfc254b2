package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the outcome of a job run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial" // downloader reported errors, art fix went through
	RunFailed    RunStatus = "failed"
)

// JobRun is the history record of one job
type JobRun struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	Link            string     `json:"link" gorm:"not null"`
	Name            string     `json:"name,omitempty"`
	DestinationDir  string     `json:"destination_dir"`
	WholePlaylist   bool       `json:"whole_playlist"`
	Status          RunStatus  `json:"status" gorm:"not null;index"`
	ErrorMessage    string     `json:"error_message,omitempty" gorm:"type:text"`
	NormalizedCount int        `json:"normalized_count" gorm:"default:0"`
	FailedCount     int        `json:"failed_count" gorm:"default:0"`
	StartedAt       time.Time  `json:"started_at" gorm:"index"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewJobRun creates a running history record for a job
func NewJobRun(job *Job) *JobRun {
	return &JobRun{
		ID:             uuid.New().String(),
		Link:           job.Link,
		Name:           job.Name,
		DestinationDir: job.DestinationDir,
		WholePlaylist:  job.DownloadWholePlaylist,
		Status:         RunRunning,
		StartedAt:      time.Now(),
	}
}

// RecordResult copies the normalization counts onto the run
func (r *JobRun) RecordResult(result *NormalizeResult) {
	if result == nil {
		return
	}
	r.NormalizedCount = len(result.Tracks)
	r.FailedCount = len(result.Failures)
}

// MarkCompleted marks the run as completed
func (r *JobRun) MarkCompleted() {
	r.finish(RunCompleted, nil)
}

// MarkPartial marks a run whose download step reported an error
func (r *JobRun) MarkPartial(err error) {
	r.finish(RunPartial, err)
}

// MarkFailed marks the run as failed
func (r *JobRun) MarkFailed(err error) {
	r.finish(RunFailed, err)
}

func (r *JobRun) finish(status RunStatus, err error) {
	r.Status = status
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	now := time.Now()
	r.CompletedAt = &now
}

// IsTerminal checks if the run has finished
func (r *JobRun) IsTerminal() bool {
	return r.Status != RunRunning
}
