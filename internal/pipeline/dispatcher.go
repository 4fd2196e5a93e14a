package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/interfaces"
)

// Dispatcher is the single background poll loop. It claims the oldest queued
// job, runs the orchestrator to completion, then claims the next. Jobs run
// strictly one at a time.
type Dispatcher struct {
	jobStorage   interfaces.JobStorage
	orchestrator *Orchestrator
	pollInterval time.Duration
	logger       arbor.ILogger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDispatcher creates a dispatcher. It does not start polling until Start
// is called.
func NewDispatcher(jobStorage interfaces.JobStorage, orchestrator *Orchestrator, pollInterval time.Duration, logger arbor.ILogger) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Dispatcher{
		jobStorage:   jobStorage,
		orchestrator: orchestrator,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches the poll loop. Calling Start on a running dispatcher is a
// no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		d.logger.Debug().Msg("Dispatcher already running, ignoring start")
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})

	d.logger.Info().Dur("poll_interval", d.pollInterval).Msg("Dispatcher started")
	go d.loop(d.stopCh, d.doneCh)
}

// Stop halts further claims and waits for any in-flight job to finish. An
// in-flight stage is never interrupted. Calling Stop on a stopped dispatcher
// is a no-op.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	doneCh := d.doneCh
	d.mu.Unlock()

	<-doneCh
	d.logger.Info().Msg("Dispatcher stopped")
}

// IsRunning reports whether the poll loop is active.
func (d *Dispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Dispatcher) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		claimed := d.claimAndRun()
		if claimed {
			// Check for another queued job immediately after finishing one.
			continue
		}

		select {
		case <-stopCh:
			return
		case <-time.After(d.pollInterval):
		}
	}
}

// claimAndRun claims at most one job and runs it to completion. A panic
// escaping the orchestrator is caught so the loop keeps polling.
func (d *Dispatcher) claimAndRun() (claimed bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("Recovered from panic in job execution, dispatcher continues")
		}
	}()

	// The loop's stop signal must not cancel an in-flight job, so execution
	// runs against a background context.
	ctx := context.Background()

	job, err := d.jobStorage.ClaimNextQueued(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to claim queued job")
		return false
	}
	if job == nil {
		return false
	}

	d.logger.Info().Str("job_id", job.ID).Msg("Claimed queued job")
	if err := d.orchestrator.Execute(ctx, job); err != nil {
		// Already persisted as failed by the orchestrator.
		d.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Job finished with failure")
	}
	return true
}
