// -----------------------------------------------------------------------
// Job - Tracked execution of the generation pipeline for one course
// -----------------------------------------------------------------------

package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType classifies a job. Only one variant exists today.
type JobType string

const (
	JobTypeGenerateCourse JobType = "generate_course"
)

// JobStatus is the linear job lifecycle: queued -> running -> terminal.
// There is no transition out of a terminal state and no automatic retry.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobStage is the closed set of pipeline stage identifiers. A separate
// human-readable StageMessage carries display text.
type JobStage string

const (
	JobStageStarting  JobStage = "starting"
	JobStageSkeleton  JobStage = "skeleton"
	JobStageLessons   JobStage = "lessons"
	JobStageQuizzes   JobStage = "quizzes"
	JobStageResources JobStage = "resources"
	JobStageFinalize  JobStage = "finalize"
)

// Job is the persisted record of one pipeline execution. It is created in
// queued at submission time and mutated only by the dispatcher/orchestrator.
type Job struct {
	ID           string    `json:"id" badgerhold:"key"`
	Type         JobType   `json:"type"`
	CourseID     string    `json:"course_id" badgerhold:"index"`
	Status       JobStatus `json:"status" badgerhold:"index"`
	Progress     int       `json:"progress"` // 0-100, monotonically non-decreasing within a run
	Stage        JobStage  `json:"stage"`
	StageMessage string    `json:"stage_message"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewJob creates a queued generate-course job bound to its course artifact.
func NewJob(courseID string) *Job {
	now := time.Now()
	return &Job{
		ID:        "job_" + uuid.New().String(),
		Type:      JobTypeGenerateCourse,
		CourseID:  courseID,
		Status:    JobStatusQueued,
		Progress:  0,
		Stage:     JobStageStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminal returns true once the job has succeeded or failed.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

// MarkRunning transitions a claimed job into execution.
func (j *Job) MarkRunning() {
	j.Status = JobStatusRunning
	j.Stage = JobStageStarting
	j.StageMessage = "Starting"
	j.Progress = 0
	j.UpdatedAt = time.Now()
}

// MarkSucceeded is a no-op if the job is already terminal.
func (j *Job) MarkSucceeded() {
	if j.IsTerminal() {
		return
	}
	j.Status = JobStatusSucceeded
	j.Progress = 100
	j.UpdatedAt = time.Now()
}

// MarkFailed is a no-op if the job is already terminal.
func (j *Job) MarkFailed(kind ErrorKind, message string) {
	if j.IsTerminal() {
		return
	}
	j.Status = JobStatusFailed
	j.ErrorKind = kind
	j.ErrorMessage = message
	j.UpdatedAt = time.Now()
}
