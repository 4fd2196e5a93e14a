package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// IdempotencyStorage implements the IdempotencyStorage interface for Badger.
// Badgerhold's Insert fails with ErrKeyExists on a duplicate key, which gives
// the atomic check-and-insert the contract requires; there is no separate
// read-then-write window for concurrent submitters to race through.
type IdempotencyStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIdempotencyStorage creates a new IdempotencyStorage instance
func NewIdempotencyStorage(db *BadgerDB, logger arbor.ILogger) interfaces.IdempotencyStorage {
	return &IdempotencyStorage{
		db:     db,
		logger: logger,
	}
}

// Reserve atomically binds key to jobID. First writer wins: when the key is
// already bound, the existing job id is returned with created=false.
func (s *IdempotencyStorage) Reserve(ctx context.Context, key, jobID string) (bool, string, error) {
	record := models.IdempotencyRecord{
		Key:       key,
		JobID:     jobID,
		CreatedAt: time.Now(),
	}

	err := s.db.Store().Insert(key, &record)
	if err == nil {
		s.logger.Debug().Str("key", key).Str("job_id", jobID).Msg("Idempotency key reserved")
		return true, jobID, nil
	}
	if err != badgerhold.ErrKeyExists {
		return false, "", models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to reserve idempotency key", err)
	}

	var existing models.IdempotencyRecord
	if getErr := s.db.Store().Get(key, &existing); getErr != nil {
		// Lost the race and the winner's record is not readable yet.
		return false, "", models.WrapKindError(models.ErrorKindIdempotencyConflict,
			fmt.Sprintf("concurrent submission raced on key %s", key), getErr)
	}

	return false, existing.JobID, nil
}

// Release removes a reservation so a failed submission can be retried.
func (s *IdempotencyStorage) Release(ctx context.Context, key string) error {
	if err := s.db.Store().Delete(key, &models.IdempotencyRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
