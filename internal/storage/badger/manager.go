package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
)

// Manager bundles all Badger-backed storage services behind the
// StorageManager interface.
type Manager struct {
	db          *BadgerDB
	jobs        interfaces.JobStorage
	events      interfaces.JobEventStorage
	idempotency interfaces.IdempotencyStorage
	courses     interfaces.CourseStorage
	logger      arbor.ILogger
}

// NewManager opens the database and wires up the storage services.
func NewManager(config *common.BadgerConfig, logger arbor.ILogger) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger storage: %w", err)
	}

	return &Manager{
		db:          db,
		jobs:        NewJobStorage(db, logger),
		events:      NewJobEventStorage(db, logger),
		idempotency: NewIdempotencyStorage(db, logger),
		courses:     NewCourseStorage(db, logger),
		logger:      logger,
	}, nil
}

func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobs
}

func (m *Manager) JobEventStorage() interfaces.JobEventStorage {
	return m.events
}

func (m *Manager) IdempotencyStorage() interfaces.IdempotencyStorage {
	return m.idempotency
}

func (m *Manager) CourseStorage() interfaces.CourseStorage {
	return m.courses
}

// Close closes the underlying database connection.
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage manager")
	return m.db.Close()
}
