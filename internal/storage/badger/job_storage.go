package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db      *BadgerDB
	logger  arbor.ILogger
	claimMu sync.Mutex // serializes claim read-modify-write
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Insert(job.ID, job); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to create job", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewKindError(models.ErrorKindJobNotFound, fmt.Sprintf("job not found: %s", jobID))
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ClaimNextQueued returns the oldest queued job and transitions it to
// running. The mutex closes the read-modify-write window; with a single
// dispatcher it is belt-and-braces, but claims stay correct if a second
// caller ever appears.
func (s *JobStorage) ClaimNextQueued(ctx context.Context) (*models.Job, error) {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	var jobs []models.Job
	query := badgerhold.Where("Status").Eq(models.JobStatusQueued).SortBy("CreatedAt").Limit(1)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query queued jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	job := jobs[0]
	job.MarkRunning()
	if err := s.db.Store().Update(job.ID, &job); err != nil {
		return nil, models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to claim job", err)
	}

	s.logger.Debug().Str("job_id", job.ID).Msg("Claimed queued job")
	return &job, nil
}

// UpdateProgress applies a monotonic percent update. A percent lower than the
// stored value keeps the stored value; stage and message are last-write-wins.
func (s *JobStorage) UpdateProgress(ctx context.Context, jobID string, percent int, stage models.JobStage, message string) error {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return models.NewKindError(models.ErrorKindJobNotFound, fmt.Sprintf("job not found: %s", jobID))
		}
		return fmt.Errorf("failed to get job for progress update: %w", err)
	}

	if percent > job.Progress {
		job.Progress = percent
	}
	job.Stage = stage
	job.StageMessage = message
	job.UpdatedAt = time.Now()

	if err := s.db.Store().Update(jobID, &job); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to update job progress", err)
	}
	return nil
}

func (s *JobStorage) MarkSucceeded(ctx context.Context, jobID string) error {
	return s.markTerminal(jobID, func(job *models.Job) {
		job.MarkSucceeded()
	})
}

func (s *JobStorage) MarkFailed(ctx context.Context, jobID string, kind models.ErrorKind, message string) error {
	return s.markTerminal(jobID, func(job *models.Job) {
		job.MarkFailed(kind, message)
	})
}

func (s *JobStorage) markTerminal(jobID string, apply func(*models.Job)) error {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return models.NewKindError(models.ErrorKindJobNotFound, fmt.Sprintf("job not found: %s", jobID))
		}
		return fmt.Errorf("failed to get job for terminal transition: %w", err)
	}

	if job.IsTerminal() {
		// No transition out of a terminal state.
		return nil
	}

	apply(&job)
	if err := s.db.Store().Update(jobID, &job); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to mark job terminal", err)
	}
	return nil
}

func (s *JobStorage) ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error) {
	var jobs []models.Job
	if err := s.db.Store().Find(&jobs, badgerhold.Where("Status").Eq(status).SortBy("CreatedAt")); err != nil {
		return nil, fmt.Errorf("failed to list jobs by status: %w", err)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}
