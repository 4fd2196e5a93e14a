package interfaces

import (
	"context"

	"github.com/coursecraft/coursecraft/internal/models"
)

// JobStorage persists job records and drives the claim state machine.
type JobStorage interface {
	// CreateJob persists a new queued job.
	CreateJob(ctx context.Context, job *models.Job) error

	// GetJob returns the job or a job_not_found kind error.
	GetJob(ctx context.Context, jobID string) (*models.Job, error)

	// ClaimNextQueued returns the oldest queued job, transitioning it to
	// running with stage "Starting" and progress 0. Returns (nil, nil) when
	// the queue is empty.
	ClaimNextQueued(ctx context.Context) (*models.Job, error)

	// UpdateProgress applies a monotonic percent update; a lower percent is
	// ignored. Stage and message are last-write-wins.
	UpdateProgress(ctx context.Context, jobID string, percent int, stage models.JobStage, message string) error

	// MarkSucceeded is an idempotent no-op if the job is already terminal.
	MarkSucceeded(ctx context.Context, jobID string) error

	// MarkFailed is an idempotent no-op if the job is already terminal.
	MarkFailed(ctx context.Context, jobID string, kind models.ErrorKind, message string) error

	// ListJobsByStatus returns jobs with the given status, oldest first.
	ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error)
}

// JobEventStorage is the append-only job event log.
type JobEventStorage interface {
	// AppendEvent writes one immutable event. Always succeeds for an
	// existing job; additive, never races on write.
	AppendEvent(ctx context.Context, event *models.JobEvent) error

	// GetEvents returns events for a job in creation order. A limit of 0
	// returns all events.
	GetEvents(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error)

	// CountEvents returns the number of events logged for a job.
	CountEvents(ctx context.Context, jobID string) (int, error)
}

// IdempotencyStorage maps client-supplied keys to job identities.
type IdempotencyStorage interface {
	// Reserve atomically binds key to jobID if the key is unseen, returning
	// created=true. If the key exists the bound job id is returned with
	// created=false. The insert must be atomic, not read-then-write.
	Reserve(ctx context.Context, key, jobID string) (created bool, boundJobID string, err error)

	// Release removes a reservation. Used only to roll back a reservation
	// whose job creation failed.
	Release(ctx context.Context, key string) error
}

// CourseStorage persists the course tree. Mutations during a job are
// append-only: children are added, never removed or reordered.
type CourseStorage interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error

	AppendModule(ctx context.Context, module *models.Module) error
	AppendLessons(ctx context.Context, lessons []models.Lesson) error
	AppendQuiz(ctx context.Context, quiz *models.Quiz) error
	AppendResources(ctx context.Context, resources []models.VideoResource) error

	// MarkCourseActive flips the course out of draft. Finalize stage only.
	MarkCourseActive(ctx context.Context, courseID string) error

	GetModules(ctx context.Context, courseID string) ([]models.Module, error)

	// GetCourseTree loads the full course with modules, lessons, quizzes and
	// resources, or a course_not_found kind error.
	GetCourseTree(ctx context.Context, courseID string) (*models.CourseTree, error)
}

// StorageManager provides access to all storage services.
type StorageManager interface {
	JobStorage() JobStorage
	JobEventStorage() JobEventStorage
	IdempotencyStorage() IdempotencyStorage
	CourseStorage() CourseStorage
	Close() error
}
