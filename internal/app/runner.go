package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/music-manager-go/internal/domain"
	"github.com/yourusername/music-manager-go/internal/infrastructure"
	"go.uber.org/zap"
)

// Runner runs jobs one after another: download, then album art fix
type Runner struct {
	resolver   *JobResolver
	downloader domain.Downloader
	normalizer domain.ArtNormalizer
	repo       domain.JobRunRepository // nil when history is disabled
	notifier   *infrastructure.NotificationService
	logger     *zap.Logger
}

// NewRunner creates a new runner
func NewRunner(
	resolver *JobResolver,
	downloader domain.Downloader,
	normalizer domain.ArtNormalizer,
	repo domain.JobRunRepository,
	notifier *infrastructure.NotificationService,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		resolver:   resolver,
		downloader: downloader,
		normalizer: normalizer,
		repo:       repo,
		notifier:   notifier,
		logger:     logger,
	}
}

// Run processes jobs sequentially. A failed job does not stop the ones after
// it; the returned error lists every job that ended failed.
func (r *Runner) Run(ctx context.Context, jobs []*domain.Job) error {
	var failed []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		run, err := r.RunJob(ctx, job)
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil && (run == nil || run.Status == domain.RunFailed) {
			failed = append(failed, fmt.Errorf("%s: %w", job.DisplayName(), err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d jobs failed: %w", len(failed), len(jobs), errors.Join(failed...))
	}
	return nil
}

// RunJob downloads one job and fixes the album art of what it fetched.
// The returned run is nil only if the destination could not be prepared.
func (r *Runner) RunJob(ctx context.Context, job *domain.Job) (*domain.JobRun, error) {
	if err := r.resolver.Prepare(job); err != nil {
		return nil, err
	}

	run := domain.NewJobRun(job)
	r.save(run, true)

	r.logger.Info("Processing job",
		zap.String("run_id", run.ID),
		zap.String("job", job.DisplayName()),
		zap.String("dir", job.DestinationDir))

	// yt-dlp runs with --ignore-errors, so a non-zero exit usually means some
	// playlist items were skipped; whatever did download still gets its art fixed
	downloadErr := r.downloader.Download(ctx, job)
	if downloadErr != nil {
		if ctx.Err() != nil {
			run.MarkFailed(ctx.Err())
			r.save(run, false)
			return run, ctx.Err()
		}
		r.logger.Warn("Downloader reported errors",
			zap.String("run_id", run.ID),
			zap.String("job", job.DisplayName()),
			zap.Error(downloadErr))
	}

	result, normalizeErr := r.normalizer.Normalize(ctx, job)
	run.RecordResult(result)
	if result != nil && r.repo != nil {
		if err := r.repo.AddTracks(run.ID, result.Tracks); err != nil {
			r.logger.Error("Failed to record tracks", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	var err error
	switch {
	case normalizeErr != nil:
		err = normalizeErr
		run.MarkFailed(errors.Join(downloadErr, normalizeErr))
		r.logger.Error("Job failed",
			zap.String("run_id", run.ID),
			zap.String("job", job.DisplayName()),
			zap.Int("normalized", run.NormalizedCount),
			zap.Int("failed", run.FailedCount),
			zap.Error(normalizeErr))
	case downloadErr != nil:
		err = downloadErr
		run.MarkPartial(downloadErr)
		r.logger.Info("Job finished with downloader errors",
			zap.String("run_id", run.ID),
			zap.String("job", job.DisplayName()),
			zap.Int("normalized", run.NormalizedCount))
	default:
		run.MarkCompleted()
		r.logger.Info("Job completed",
			zap.String("run_id", run.ID),
			zap.String("job", job.DisplayName()),
			zap.Int("normalized", run.NormalizedCount))
	}

	r.save(run, false)
	r.notifier.NotifyJobFinished(ctx, run)
	return run, err
}

// save writes the run to history; history problems never fail a job
func (r *Runner) save(run *domain.JobRun, create bool) {
	if r.repo == nil {
		return
	}

	var err error
	if create {
		err = r.repo.Create(run)
	} else {
		err = r.repo.Update(run)
	}
	if err != nil {
		r.logger.Error("Failed to update run history", zap.String("run_id", run.ID), zap.Error(err))
	}
}
