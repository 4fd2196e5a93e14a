package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/providers/llm"
	"github.com/coursecraft/coursecraft/internal/providers/video"
)

func TestDispatcherProcessesQueuedJobs(t *testing.T) {
	mgr := newTestStorage(t)
	ctx := context.Background()
	logger := common.GetLogger()

	orch := newTestOrchestrator(mgr, llm.NewMockProvider(logger), video.NewMockProvider(logger))
	_, job := submitTestJob(t, mgr, 30)

	d := NewDispatcher(mgr.JobStorage(), orch, 10*time.Millisecond, logger)
	d.Start()
	d.Start() // second start must be a no-op
	defer d.Stop()

	deadline := time.After(10 * time.Second)
	for {
		got, err := mgr.JobStorage().GetJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}
		if got.IsTerminal() {
			if got.Status != models.JobStatusSucceeded {
				t.Fatalf("expected succeeded, got %s (%s: %s)", got.Status, got.ErrorKind, got.ErrorMessage)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job did not reach a terminal state, stuck at %s/%d%%", got.Status, got.Progress)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestDispatcherStartStopIdempotent(t *testing.T) {
	mgr := newTestStorage(t)
	logger := common.GetLogger()

	orch := newTestOrchestrator(mgr, llm.NewMockProvider(logger), video.NewMockProvider(logger))
	d := NewDispatcher(mgr.JobStorage(), orch, 10*time.Millisecond, logger)

	if d.IsRunning() {
		t.Fatal("dispatcher must not run before Start")
	}

	d.Start()
	if !d.IsRunning() {
		t.Fatal("dispatcher must run after Start")
	}
	d.Start()
	if !d.IsRunning() {
		t.Fatal("second Start must leave the dispatcher running")
	}

	d.Stop()
	if d.IsRunning() {
		t.Fatal("dispatcher must stop after Stop")
	}
	d.Stop() // second stop must be a no-op

	// Restart after stop works.
	d.Start()
	if !d.IsRunning() {
		t.Fatal("dispatcher must restart after Stop")
	}
	d.Stop()
}

func TestDispatcherSurvivesOrchestratorPanic(t *testing.T) {
	mgr := newTestStorage(t)
	ctx := context.Background()
	logger := common.GetLogger()

	panicking := &stubContentProvider{
		skeletonFunc: func(context.Context, string, models.CourseLevel, int) ([]models.ModuleDraft, error) {
			panic("provider blew up")
		},
		lessonsFunc: func(context.Context, string, models.Module, int) ([]models.LessonDraft, error) {
			panic("provider blew up")
		},
		quizFunc: func(context.Context, string, models.Module) (models.QuizDraft, error) {
			panic("provider blew up")
		},
		mode: interfaces.ProviderModeMock,
	}
	orch := newTestOrchestrator(mgr, panicking, video.NewMockProvider(logger))
	submitTestJob(t, mgr, 30)

	d := NewDispatcher(mgr.JobStorage(), orch, 10*time.Millisecond, logger)
	d.Start()
	defer d.Stop()

	// The panic is recovered; the loop must keep polling and the queue must
	// drain (the job was claimed before the panic).
	deadline := time.After(5 * time.Second)
	for {
		queued, err := mgr.JobStorage().ListJobsByStatus(ctx, models.JobStatusQueued)
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(queued) == 0 && d.IsRunning() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("dispatcher did not survive the panic")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
