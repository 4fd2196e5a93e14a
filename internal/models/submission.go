package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GenerateCourseRequest is the submission intake payload.
type GenerateCourseRequest struct {
	Topic          string      `json:"topic" validate:"required,min=3,max=200"`
	Level          CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	TimePerDay     int         `json:"time_per_day" validate:"omitempty,min=5,max=480"` // minutes
	TimePerWeek    int         `json:"time_per_week,omitempty" validate:"omitempty,min=5"`
	Deadline       *time.Time  `json:"deadline,omitempty"`
	IdempotencyKey string      `json:"idempotency_key" validate:"required,uuid"`
}

// ApplyDefaults fills optional fields before validation.
func (r *GenerateCourseRequest) ApplyDefaults() {
	if r.Level == "" {
		r.Level = CourseLevelBeginner
	}
	if r.TimePerDay == 0 {
		r.TimePerDay = 30
	}
}

// Validate checks the submission shape. Defaults must be applied first.
func (r *GenerateCourseRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return WrapKindError(ErrorKindValidation, fmt.Sprintf("invalid submission: %v", err), err)
	}
	return nil
}

// SubmitResult is returned by the submission intake.
type SubmitResult struct {
	JobID          string `json:"job_id"`
	CourseID       string `json:"course_id"`
	AlreadyExisted bool   `json:"already_existed"`
}

// JobStatusResult is returned by the job polling query.
type JobStatusResult struct {
	JobID        string     `json:"job_id"`
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress_percent"`
	Stage        JobStage   `json:"current_stage"`
	StageMessage string     `json:"stage_message,omitempty"`
	Events       []JobEvent `json:"events"`
	CourseID     string     `json:"course_id,omitempty"`
	ErrorCode    ErrorKind  `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SuggestedFix string     `json:"suggested_fix,omitempty"`
}
