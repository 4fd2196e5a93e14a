// -----------------------------------------------------------------------
// Job Event - Append-only, immutable audit log entry for one job
// -----------------------------------------------------------------------

package models

import "time"

// EventLevel is the severity of a job event.
type EventLevel string

const (
	EventLevelInfo  EventLevel = "info"
	EventLevelWarn  EventLevel = "warn"
	EventLevelError EventLevel = "error"
)

// JobEvent records one stage transition or fallback decision. Events are
// immutable once written and ordered by creation time; the event log must be
// complete enough to reconstruct what happened without re-running the job.
type JobEvent struct {
	JobID     string                 `json:"job_id" badgerhold:"index"`
	Stage     JobStage               `json:"stage"`
	Level     EventLevel             `json:"level"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Seq       uint64                 `json:"seq"` // tie-breaker for same-nanosecond writes
}
