package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/providers/llm"
	badgerstorage "github.com/coursecraft/coursecraft/internal/storage/badger"
)

// stubContentProvider implements interfaces.ContentProvider for testing
type stubContentProvider struct {
	skeletonFunc func(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error)
	lessonsFunc  func(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error)
	quizFunc     func(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error)
	mode         interfaces.ProviderMode
}

func (s *stubContentProvider) GenerateSkeleton(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error) {
	return s.skeletonFunc(ctx, topic, level, timePerDay)
}

func (s *stubContentProvider) GenerateLessons(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error) {
	return s.lessonsFunc(ctx, topic, module, timePerDay)
}

func (s *stubContentProvider) GenerateQuiz(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error) {
	return s.quizFunc(ctx, topic, module)
}

func (s *stubContentProvider) Mode() interfaces.ProviderMode { return s.mode }
func (s *stubContentProvider) Close() error                  { return nil }

// failingContentProvider simulates a cloud provider that is down
func failingContentProvider() *stubContentProvider {
	fail := models.NewKindError(models.ErrorKindContentProvider, "provider unreachable")
	return &stubContentProvider{
		skeletonFunc: func(context.Context, string, models.CourseLevel, int) ([]models.ModuleDraft, error) {
			return nil, fail
		},
		lessonsFunc: func(context.Context, string, models.Module, int) ([]models.LessonDraft, error) {
			return nil, fail
		},
		quizFunc: func(context.Context, string, models.Module) (models.QuizDraft, error) {
			return models.QuizDraft{}, fail
		},
		mode: interfaces.ProviderModeCloud,
	}
}

// stubVideoProvider implements interfaces.VideoSearchProvider for testing
type stubVideoProvider struct {
	searchFunc func(ctx context.Context, query string, maxResults int) ([]models.VideoResource, error)
}

func (s *stubVideoProvider) Search(ctx context.Context, query string, maxResults int) ([]models.VideoResource, error) {
	return s.searchFunc(ctx, query, maxResults)
}

func (s *stubVideoProvider) Mode() interfaces.ProviderMode { return interfaces.ProviderModeMock }

func failingVideoProvider() *stubVideoProvider {
	return &stubVideoProvider{
		searchFunc: func(context.Context, string, int) ([]models.VideoResource, error) {
			return nil, models.NewKindError(models.ErrorKindVideoProvider, "search unavailable")
		},
	}
}

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()

	mgr, err := badgerstorage.NewManager(&common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	}, common.GetLogger())
	if err != nil {
		t.Fatalf("failed to open test storage: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func newTestOrchestrator(mgr interfaces.StorageManager, content interfaces.ContentProvider, videoSearch interfaces.VideoSearchProvider) *Orchestrator {
	logger := common.GetLogger()
	return NewOrchestrator(
		mgr,
		content,
		llm.NewMockProvider(logger),
		videoSearch,
		&common.PipelineConfig{PollInterval: "2s", MaxVideoResults: 5, EventPollLimit: 100},
		logger,
	)
}

func submitTestJob(t *testing.T, mgr interfaces.StorageManager, timePerDay int) (*models.Course, *models.Job) {
	t.Helper()
	ctx := context.Background()

	course := models.NewCourse("Docker Containers", models.CourseLevelBeginner, timePerDay)
	if err := mgr.CourseStorage().CreateCourse(ctx, course); err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	job := models.NewJob(course.ID)
	if err := mgr.JobStorage().CreateJob(ctx, job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return course, job
}

func TestExecuteHappyPath(t *testing.T) {
	mgr := newTestStorage(t)
	ctx := context.Background()
	logger := common.GetLogger()

	videos := &stubVideoProvider{
		searchFunc: func(_ context.Context, query string, maxResults int) ([]models.VideoResource, error) {
			return []models.VideoResource{
				{Title: "Video for " + query, URL: "https://example.com/v1"},
				{Title: "Second video", URL: "https://example.com/v2"},
			}, nil
		},
	}

	orch := newTestOrchestrator(mgr, llm.NewMockProvider(logger), videos)
	course, job := submitTestJob(t, mgr, 40)

	claimed, err := mgr.JobStorage().ClaimNextQueued(ctx)
	if err != nil || claimed == nil {
		t.Fatalf("failed to claim job: %v", err)
	}
	if err := orch.Execute(ctx, claimed); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	got, err := mgr.JobStorage().GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if got.Status != models.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (%s: %s)", got.Status, got.ErrorKind, got.ErrorMessage)
	}
	if got.Progress != 100 {
		t.Errorf("expected progress 100, got %d", got.Progress)
	}

	tree, err := mgr.CourseStorage().GetCourseTree(ctx, course.ID)
	if err != nil {
		t.Fatalf("failed to load course tree: %v", err)
	}
	if tree.Course.Status != models.CourseStatusActive {
		t.Errorf("expected active course, got %s", tree.Course.Status)
	}
	if len(tree.Modules) != models.ModulesPerCourse {
		t.Fatalf("expected %d modules, got %d", models.ModulesPerCourse, len(tree.Modules))
	}
	for _, mt := range tree.Modules {
		if len(mt.Lessons) < models.MinLessons || len(mt.Lessons) > models.MaxLessons {
			t.Errorf("module %s: lesson count %d out of range", mt.Module.ID, len(mt.Lessons))
		}
		if mt.Quiz == nil {
			t.Errorf("module %s: missing quiz", mt.Module.ID)
		} else if len(mt.Quiz.Questions) < models.MinQuestions || len(mt.Quiz.Questions) > models.MaxQuestions {
			t.Errorf("module %s: question count %d out of range", mt.Module.ID, len(mt.Quiz.Questions))
		}
		if len(mt.Resources) != 2 {
			t.Errorf("module %s: expected 2 resources, got %d", mt.Module.ID, len(mt.Resources))
		}
	}
}

// All provider calls forced to fail: the job must still succeed on fallback
// content with 4 fallback lessons, a 3-question quiz and zero resources per
// module.
func TestExecuteAllProvidersFailing(t *testing.T) {
	mgr := newTestStorage(t)
	ctx := context.Background()

	orch := newTestOrchestrator(mgr, failingContentProvider(), failingVideoProvider())
	course, job := submitTestJob(t, mgr, 20)

	claimed, err := mgr.JobStorage().ClaimNextQueued(ctx)
	if err != nil || claimed == nil {
		t.Fatalf("failed to claim job: %v", err)
	}
	if err := orch.Execute(ctx, claimed); err != nil {
		t.Fatalf("pipeline should recover via fallbacks, got: %v", err)
	}

	got, err := mgr.JobStorage().GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if got.Status != models.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (%s: %s)", got.Status, got.ErrorKind, got.ErrorMessage)
	}

	tree, err := mgr.CourseStorage().GetCourseTree(ctx, course.ID)
	if err != nil {
		t.Fatalf("failed to load course tree: %v", err)
	}
	if len(tree.Modules) != models.ModulesPerCourse {
		t.Fatalf("expected %d modules, got %d", models.ModulesPerCourse, len(tree.Modules))
	}
	for _, mt := range tree.Modules {
		if !mt.Module.Fallback {
			t.Errorf("module %s: expected fallback skeleton", mt.Module.ID)
		}
		if len(mt.Lessons) != 4 {
			t.Errorf("module %s: expected exactly 4 fallback lessons, got %d", mt.Module.ID, len(mt.Lessons))
		}
		for _, lesson := range mt.Lessons {
			if !lesson.Fallback {
				t.Errorf("lesson %s: expected fallback flag", lesson.ID)
			}
			if lesson.Minutes != 5 {
				t.Errorf("lesson %s: expected 5 minutes from 20/4 split, got %d", lesson.ID, lesson.Minutes)
			}
		}
		if mt.Lessons[len(mt.Lessons)-1].Kind != models.LessonKindApply {
			t.Errorf("module %s: last fallback lesson must be apply", mt.Module.ID)
		}
		if mt.Quiz == nil || len(mt.Quiz.Questions) != 3 {
			t.Errorf("module %s: expected 3-question fallback quiz", mt.Module.ID)
		}
		if len(mt.Resources) != 0 {
			t.Errorf("module %s: expected zero resources, got %d", mt.Module.ID, len(mt.Resources))
		}
	}

	events, err := mgr.JobEventStorage().GetEvents(ctx, job.ID, 0)
	if err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	warns := 0
	videoWarns := 0
	for _, evt := range events {
		if evt.Level == models.EventLevelWarn {
			warns++
			if evt.Stage == models.JobStageResources {
				videoWarns++
			}
		}
	}
	if warns == 0 {
		t.Error("expected warn events documenting the fallbacks")
	}
	if videoWarns != models.ModulesPerCourse {
		t.Errorf("expected one video warn event per module, got %d", videoWarns)
	}
}

// Stage 1 exhausting even the mock fallback is fatal.
func TestExecuteSkeletonFatal(t *testing.T) {
	mgr := newTestStorage(t)
	ctx := context.Background()
	logger := common.GetLogger()

	failing := failingContentProvider()
	failing.mode = interfaces.ProviderModeMock // no separate mock attempt remains

	orch := NewOrchestrator(
		mgr,
		failing,
		failing,
		failingVideoProvider(),
		&common.PipelineConfig{PollInterval: "2s", MaxVideoResults: 5, EventPollLimit: 100},
		logger,
	)
	_, job := submitTestJob(t, mgr, 30)

	claimed, err := mgr.JobStorage().ClaimNextQueued(ctx)
	if err != nil || claimed == nil {
		t.Fatalf("failed to claim job: %v", err)
	}
	if err := orch.Execute(ctx, claimed); err == nil {
		t.Fatal("expected fatal skeleton failure")
	}

	got, err := mgr.JobStorage().GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if got.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.ErrorKind != models.ErrorKindContentProvider {
		t.Errorf("expected content_provider_failure, got %s", got.ErrorKind)
	}

	events, err := mgr.JobEventStorage().GetEvents(ctx, job.ID, 0)
	if err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	sawError := false
	for _, evt := range events {
		if evt.Level == models.EventLevelError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected an error-level event for the fatal failure")
	}
}

func TestSynthesizeLessonsSplitsTimeBudget(t *testing.T) {
	module := models.Module{ID: "mod_x", Title: "Foundations"}

	drafts := synthesizeLessons(module, 120)
	if len(drafts) != 4 {
		t.Fatalf("expected 4 lessons, got %d", len(drafts))
	}
	kinds := []models.LessonKind{
		models.LessonKindLearn,
		models.LessonKindPractice,
		models.LessonKindLearn,
		models.LessonKindApply,
	}
	for i, d := range drafts {
		if d.Kind != kinds[i] {
			t.Errorf("lesson %d: expected kind %s, got %s", i, kinds[i], d.Kind)
		}
		if d.Minutes != 30 {
			t.Errorf("lesson %d: expected 30 minutes, got %d", i, d.Minutes)
		}
	}

	clampedLow := synthesizeLessons(module, 2)
	for _, d := range clampedLow {
		if d.Minutes != models.MinLessonMinutes {
			t.Errorf("expected minutes clamped to %d, got %d", models.MinLessonMinutes, d.Minutes)
		}
	}

	clampedHigh := synthesizeLessons(module, 480)
	for _, d := range clampedHigh {
		if d.Minutes != models.MaxLessonMinutes {
			t.Errorf("expected minutes clamped to %d, got %d", models.MaxLessonMinutes, d.Minutes)
		}
	}
}

func TestSynthesizeQuiz(t *testing.T) {
	quiz := synthesizeQuiz(models.Module{ID: "mod_x", Title: "Foundations"})
	if len(quiz.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.Kind != models.QuestionKindMCQ {
			t.Errorf("question %d: expected mcq, got %s", i, q.Kind)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		if q.AnswerKey != "Option A" {
			t.Errorf("question %d: expected answer 'Option A', got %q", i, q.AnswerKey)
		}
	}
}
