package courses

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// Service implements the submission intake and read queries. It owns the
// idempotency handshake; the pipeline owns everything after the job is
// queued.
type Service struct {
	jobStorage         interfaces.JobStorage
	eventStorage       interfaces.JobEventStorage
	idempotencyStorage interfaces.IdempotencyStorage
	courseStorage      interfaces.CourseStorage
	eventPollLimit     int
	logger             arbor.ILogger
}

// NewService creates a course service instance.
func NewService(storageManager interfaces.StorageManager, config *common.PipelineConfig, logger arbor.ILogger) *Service {
	limit := config.EventPollLimit
	if limit <= 0 {
		limit = 100
	}
	return &Service{
		jobStorage:         storageManager.JobStorage(),
		eventStorage:       storageManager.JobEventStorage(),
		idempotencyStorage: storageManager.IdempotencyStorage(),
		courseStorage:      storageManager.CourseStorage(),
		eventPollLimit:     limit,
		logger:             logger,
	}
}

// Submit validates the request, reserves the idempotency key, and creates
// the draft course and queued job. A duplicate key returns the previously
// bound job id with AlreadyExisted set.
func (s *Service) Submit(ctx context.Context, req *models.GenerateCourseRequest) (*models.SubmitResult, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	course := models.NewCourse(req.Topic, req.Level, req.TimePerDay)
	job := models.NewJob(course.ID)

	created, boundJobID, err := s.idempotencyStorage.Reserve(ctx, req.IdempotencyKey, job.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := s.jobStorage.GetJob(ctx, boundJobID)
		if err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("idempotency_key", req.IdempotencyKey).
			Str("job_id", existing.ID).
			Msg("Duplicate submission, returning existing job")
		return &models.SubmitResult{
			JobID:          existing.ID,
			CourseID:       existing.CourseID,
			AlreadyExisted: true,
		}, nil
	}

	if err := s.courseStorage.CreateCourse(ctx, course); err != nil {
		s.rollback(ctx, req.IdempotencyKey, "")
		return nil, err
	}
	if err := s.jobStorage.CreateJob(ctx, job); err != nil {
		s.rollback(ctx, req.IdempotencyKey, course.ID)
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("course_id", course.ID).
		Str("topic", req.Topic).
		Msg("Course generation job queued")

	return &models.SubmitResult{
		JobID:    job.ID,
		CourseID: course.ID,
	}, nil
}

// GetJobStatus implements the polling query. Events are capped to the most
// recent entries; on failure the static suggested fix is included, on
// success the course id.
func (s *Service) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatusResult, error) {
	job, err := s.jobStorage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventStorage.GetEvents(ctx, jobID, s.eventPollLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for job %s: %w", jobID, err)
	}

	result := &models.JobStatusResult{
		JobID:        job.ID,
		Status:       job.Status,
		Progress:     job.Progress,
		Stage:        job.Stage,
		StageMessage: job.StageMessage,
		Events:       events,
	}

	switch job.Status {
	case models.JobStatusSucceeded:
		result.CourseID = job.CourseID
	case models.JobStatusFailed:
		result.ErrorCode = job.ErrorKind
		result.ErrorMessage = job.ErrorMessage
		result.SuggestedFix = models.SuggestedFix(job.ErrorKind)
	}

	return result, nil
}

// GetCourseTree implements the read-only course content query.
func (s *Service) GetCourseTree(ctx context.Context, courseID string) (*models.CourseTree, error) {
	return s.courseStorage.GetCourseTree(ctx, courseID)
}

// rollback undoes a half-completed submission so the idempotency key can be
// retried. Best-effort: failures are logged only.
func (s *Service) rollback(ctx context.Context, idempotencyKey, courseID string) {
	if err := s.idempotencyStorage.Release(ctx, idempotencyKey); err != nil {
		s.logger.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("Failed to release idempotency reservation during rollback")
	}
	if courseID != "" {
		if err := s.courseStorage.DeleteCourse(ctx, courseID); err != nil {
			s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to delete draft course during rollback")
		}
	}
}
