package models

import "fmt"

// ErrorKind is a stable error code surfaced to clients polling a failed job.
type ErrorKind string

const (
	ErrorKindValidation           ErrorKind = "validation_error"
	ErrorKindContentSchemaInvalid ErrorKind = "content_generation_schema_invalid"
	ErrorKindContentProvider      ErrorKind = "content_provider_failure"
	ErrorKindVideoProvider        ErrorKind = "video_provider_failure"
	ErrorKindPersistenceWrite     ErrorKind = "persistence_write_failure"
	ErrorKindOrchestratorInternal ErrorKind = "orchestrator_internal_failure"
	ErrorKindIdempotencyConflict  ErrorKind = "idempotency_key_conflict"
	ErrorKindJobNotFound          ErrorKind = "job_not_found"
	ErrorKindCourseNotFound       ErrorKind = "course_not_found"
)

// suggestedFixes maps error kinds to static, user-facing remediation hints.
var suggestedFixes = map[ErrorKind]string{
	ErrorKindValidation:           "Check the request body: topic must be 3-200 characters and time_per_day between 5 and 480 minutes.",
	ErrorKindContentSchemaInvalid: "The content provider returned malformed output. Resubmit the request; persistent failures indicate a provider model issue.",
	ErrorKindContentProvider:      "The content provider was unreachable or returned an error. Verify API key configuration and provider status, then resubmit.",
	ErrorKindVideoProvider:        "Video search was unavailable. The course was still generated; resources can be added later.",
	ErrorKindPersistenceWrite:     "A storage write failed. Check disk space and database health, then resubmit.",
	ErrorKindOrchestratorInternal: "An unexpected internal error occurred. Check server logs for the job id and resubmit.",
	ErrorKindIdempotencyConflict:  "Two submissions raced on the same idempotency key. Retry the request; the existing job will be returned.",
	ErrorKindJobNotFound:          "No job exists with that id. Verify the job id returned at submission time.",
	ErrorKindCourseNotFound:       "No course exists with that id. Verify the course id from the completed job.",
}

// SuggestedFix returns the static remediation hint for an error kind.
func SuggestedFix(kind ErrorKind) string {
	if fix, ok := suggestedFixes[kind]; ok {
		return fix
	}
	return "Check server logs for details."
}

// KindError is an error carrying a classified ErrorKind so callers can map
// failures to stable codes and HTTP statuses.
type KindError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// NewKindError creates a classified error.
func NewKindError(kind ErrorKind, message string) *KindError {
	return &KindError{Kind: kind, Message: message}
}

// WrapKindError classifies an underlying error.
func WrapKindError(kind ErrorKind, message string, err error) *KindError {
	return &KindError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// orchestrator_internal_failure for unclassified errors.
func KindOf(err error) ErrorKind {
	for err != nil {
		if ke, ok := err.(*KindError); ok {
			return ke.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrorKindOrchestratorInternal
}
