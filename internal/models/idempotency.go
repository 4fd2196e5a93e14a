package models

import "time"

// IdempotencyRecord maps a client-supplied key to exactly one job. First
// writer wins; later submissions with the same key resolve to the same job
// without creating new work or course artifacts.
type IdempotencyRecord struct {
	Key       string    `json:"key" badgerhold:"key"`
	JobID     string    `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
}
