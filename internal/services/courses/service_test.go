package courses

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
	badgerstorage "github.com/coursecraft/coursecraft/internal/storage/badger"
)

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	mgr, err := badgerstorage.NewManager(&common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	}, common.GetLogger())
	if err != nil {
		t.Fatalf("failed to open test storage: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	svc := NewService(mgr, &common.PipelineConfig{PollInterval: "2s", MaxVideoResults: 5, EventPollLimit: 100}, common.GetLogger())
	return svc, mgr
}

func TestSubmitCreatesQueuedJobAndDraftCourse(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, &models.GenerateCourseRequest{
		Topic:          "Docker Containers",
		Level:          models.CourseLevelBeginner,
		TimePerDay:     20,
		IdempotencyKey: "2b1f9d3e-6a75-4f43-9a64-cf6f21a7b3d8",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.AlreadyExisted {
		t.Error("first submission must not report already existed")
	}

	job, err := mgr.JobStorage().GetJob(ctx, result.JobID)
	if err != nil {
		t.Fatalf("job not created: %v", err)
	}
	if job.Status != models.JobStatusQueued {
		t.Errorf("expected queued job, got %s", job.Status)
	}
	if job.CourseID != result.CourseID {
		t.Errorf("job bound to course %s, result says %s", job.CourseID, result.CourseID)
	}

	course, err := mgr.CourseStorage().GetCourse(ctx, result.CourseID)
	if err != nil {
		t.Fatalf("course not created: %v", err)
	}
	if course.Status != models.CourseStatusDraft {
		t.Errorf("expected draft course, got %s", course.Status)
	}
	if course.TimePerDay != 20 {
		t.Errorf("expected time_per_day 20, got %d", course.TimePerDay)
	}
}

// Two submissions with the same idempotency key return the same job id and
// create exactly one course.
func TestSubmitIdempotency(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	req := func() *models.GenerateCourseRequest {
		return &models.GenerateCourseRequest{
			Topic:          "Kubernetes Basics",
			IdempotencyKey: "7c3d8f2a-91e4-4b6d-8a15-3e9f0c4d72b1",
		}
	}

	first, err := svc.Submit(ctx, req())
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := svc.Submit(ctx, req())
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if !second.AlreadyExisted {
		t.Error("duplicate submission must report already existed")
	}
	if second.JobID != first.JobID {
		t.Errorf("duplicate submission returned job %s, expected %s", second.JobID, first.JobID)
	}
	if second.CourseID != first.CourseID {
		t.Errorf("duplicate submission returned course %s, expected %s", second.CourseID, first.CourseID)
	}

	queued, err := mgr.JobStorage().ListJobsByStatus(ctx, models.JobStatusQueued)
	if err != nil {
		t.Fatalf("failed to list jobs: %v", err)
	}
	if len(queued) != 1 {
		t.Errorf("expected exactly one queued job, got %d", len(queued))
	}
}

// A submission below the minimum daily time is rejected before any job or
// course is created.
func TestSubmitValidationRejectsBeforePersisting(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, &models.GenerateCourseRequest{
		Topic:          "Docker Containers",
		TimePerDay:     3,
		IdempotencyKey: "9f1e6b2c-45d7-4a83-b6f9-12c8d3e7a054",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if models.KindOf(err) != models.ErrorKindValidation {
		t.Errorf("expected validation_error, got %s", models.KindOf(err))
	}

	queued, err := mgr.JobStorage().ListJobsByStatus(ctx, models.JobStatusQueued)
	if err != nil {
		t.Fatalf("failed to list jobs: %v", err)
	}
	if len(queued) != 0 {
		t.Errorf("rejected submission must not create a job, found %d", len(queued))
	}

	// The idempotency key must remain unreserved so a corrected submission
	// can reuse it.
	created, _, err := mgr.IdempotencyStorage().Reserve(ctx, "9f1e6b2c-45d7-4a83-b6f9-12c8d3e7a054", "job_probe")
	if err != nil {
		t.Fatalf("reserve probe failed: %v", err)
	}
	if !created {
		t.Error("validation failure must not consume the idempotency key")
	}
}

func TestGetJobStatusShapes(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, &models.GenerateCourseRequest{
		Topic:          "Docker Containers",
		IdempotencyKey: "5a2c7e9b-83f1-4d06-9c4e-7b1a8d3f6e20",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	status, err := svc.GetJobStatus(ctx, result.JobID)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if status.Status != models.JobStatusQueued {
		t.Errorf("expected queued, got %s", status.Status)
	}
	if status.CourseID != "" {
		t.Error("course id must only appear on success")
	}
	if status.SuggestedFix != "" {
		t.Error("suggested fix must only appear on failure")
	}

	// Failed job surfaces the error kind, message and static fix.
	if err := mgr.JobStorage().MarkFailed(ctx, result.JobID, models.ErrorKindContentProvider, "provider unreachable"); err != nil {
		t.Fatalf("failed to mark job failed: %v", err)
	}
	if err := mgr.JobEventStorage().AppendEvent(ctx, &models.JobEvent{
		JobID:     result.JobID,
		Stage:     models.JobStageSkeleton,
		Level:     models.EventLevelError,
		Message:   "provider unreachable",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	status, err = svc.GetJobStatus(ctx, result.JobID)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if status.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %s", status.Status)
	}
	if status.ErrorCode != models.ErrorKindContentProvider {
		t.Errorf("expected content_provider_failure, got %s", status.ErrorCode)
	}
	if status.SuggestedFix != models.SuggestedFix(models.ErrorKindContentProvider) {
		t.Error("suggested fix must match the static string for the error kind")
	}
	if len(status.Events) == 0 {
		t.Error("expected events in the polling response")
	}

	_, err = svc.GetJobStatus(ctx, "job_unknown")
	if err == nil {
		t.Fatal("expected job_not_found")
	}
	if models.KindOf(err) != models.ErrorKindJobNotFound {
		t.Errorf("expected job_not_found, got %s", models.KindOf(err))
	}
}
