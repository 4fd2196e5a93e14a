package badger

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// eventSequence ensures unique event keys even within the same nanosecond
var eventSequence uint64

// JobEventStorage implements the JobEventStorage interface for Badger
type JobEventStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobEventStorage creates a new JobEventStorage instance
func NewJobEventStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobEventStorage {
	return &JobEventStorage{
		db:     db,
		logger: logger,
	}
}

// AppendEvent writes one immutable event. Keys combine job id, timestamp and
// an atomic sequence so concurrent appends never collide.
func (s *JobEventStorage) AppendEvent(ctx context.Context, event *models.JobEvent) error {
	if event.JobID == "" {
		return fmt.Errorf("event job ID is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.Seq = atomic.AddUint64(&eventSequence, 1)

	key := fmt.Sprintf("%s_%d_%d", event.JobID, event.CreatedAt.UnixNano(), event.Seq)
	if err := s.db.Store().Insert(key, event); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to append job event", err)
	}
	return nil
}

// GetEvents returns events for a job ordered by creation time. With a limit,
// the most recent events are returned, still in creation order.
func (s *JobEventStorage) GetEvents(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error) {
	var events []models.JobEvent
	query := badgerhold.Where("JobID").Eq(jobID).SortBy("CreatedAt", "Seq")
	if err := s.db.Store().Find(&events, query); err != nil {
		return nil, fmt.Errorf("failed to get job events: %w", err)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *JobEventStorage) CountEvents(ctx context.Context, jobID string) (int, error) {
	count, err := s.db.Store().Count(&models.JobEvent{}, badgerhold.Where("JobID").Eq(jobID))
	if err != nil {
		return 0, fmt.Errorf("failed to count job events: %w", err)
	}
	return int(count), nil
}
