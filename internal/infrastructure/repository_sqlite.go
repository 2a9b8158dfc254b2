package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/music-manager-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteRunRepository implements domain.JobRunRepository using SQLite
type SQLiteRunRepository struct {
	db *gorm.DB
}

// NewSQLiteRunRepository opens (creating if needed) the history database
func NewSQLiteRunRepository(dbPath string) (*SQLiteRunRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.JobRun{}, &domain.Track{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRunRepository{db: db}, nil
}

// Create creates a new run
func (r *SQLiteRunRepository) Create(run *domain.JobRun) error {
	return r.db.Create(run).Error
}

// Update updates an existing run
func (r *SQLiteRunRepository) Update(run *domain.JobRun) error {
	return r.db.Save(run).Error
}

// FindByID finds a run by ID. Returns nil if not found.
func (r *SQLiteRunRepository) FindByID(id string) (*domain.JobRun, error) {
	var run domain.JobRun
	err := r.db.First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent returns the most recent runs, newest first
func (r *SQLiteRunRepository) FindRecent(limit int) ([]*domain.JobRun, error) {
	var runs []*domain.JobRun
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

// AddTracks stores the tracks normalized by a run
func (r *SQLiteRunRepository) AddTracks(runID string, tracks []domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	rows := make([]domain.Track, len(tracks))
	for i, track := range tracks {
		track.ID = 0
		track.RunID = runID
		rows[i] = track
	}
	return r.db.Create(&rows).Error
}

// FindTracks returns the tracks normalized by a run
func (r *SQLiteRunRepository) FindTracks(runID string) ([]domain.Track, error) {
	var tracks []domain.Track
	err := r.db.Where("run_id = ?", runID).Order("id ASC").Find(&tracks).Error
	return tracks, err
}

// GetStats returns run statistics
func (r *SQLiteRunRepository) GetStats() (*domain.RunStats, error) {
	stats := &domain.RunStats{}

	if err := r.db.Model(&domain.JobRun{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.RunStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.JobRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.RunRunning:
			stats.Running = sc.Count
		case domain.RunCompleted:
			stats.Completed = sc.Count
		case domain.RunPartial:
			stats.Partial = sc.Count
		case domain.RunFailed:
			stats.Failed = sc.Count
		}
	}

	if err := r.db.Model(&domain.Track{}).Count(&stats.Normalized).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteRunRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
