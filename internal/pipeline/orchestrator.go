package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// Progress checkpoints polled by clients. Each stage advances to its end
// value; stages 2-4 interpolate per module completed.
const (
	progressSkeletonRetry = 12
	progressSkeletonDone  = 20
	progressLessonsDone   = 40
	progressQuizzesDone   = 70
	progressResourcesDone = 95
	progressComplete      = 100
)

// Orchestrator drives one job through the five generation stages, persisting
// output incrementally and applying the per-stage fallback policy. Stages 2-4
// never fail the job; stages 1 and 5 are fatal when exhausted.
type Orchestrator struct {
	jobStorage      interfaces.JobStorage
	eventStorage    interfaces.JobEventStorage
	courseStorage   interfaces.CourseStorage
	content         interfaces.ContentProvider
	mock            interfaces.ContentProvider
	videoSearch     interfaces.VideoSearchProvider
	maxVideoResults int
	logger          arbor.ILogger
}

// NewOrchestrator creates an orchestrator. The mock content provider is held
// separately as the skeleton-stage fallback.
func NewOrchestrator(
	storageManager interfaces.StorageManager,
	content interfaces.ContentProvider,
	mock interfaces.ContentProvider,
	videoSearch interfaces.VideoSearchProvider,
	config *common.PipelineConfig,
	logger arbor.ILogger,
) *Orchestrator {
	maxResults := config.MaxVideoResults
	if maxResults <= 0 || maxResults > models.MaxResourcesPerMod {
		maxResults = models.MaxResourcesPerMod
	}
	return &Orchestrator{
		jobStorage:      storageManager.JobStorage(),
		eventStorage:    storageManager.JobEventStorage(),
		courseStorage:   storageManager.CourseStorage(),
		content:         content,
		mock:            mock,
		videoSearch:     videoSearch,
		maxVideoResults: maxResults,
		logger:          logger,
	}
}

// Execute runs all five stages for a claimed job and transitions it to a
// terminal state. The returned error is for logging only; the terminal state
// is already persisted when Execute returns.
func (o *Orchestrator) Execute(ctx context.Context, job *models.Job) error {
	startTime := time.Now()
	o.logger.Info().
		Str("job_id", job.ID).
		Str("course_id", job.CourseID).
		Msg("Starting course generation pipeline")

	course, err := o.courseStorage.GetCourse(ctx, job.CourseID)
	if err != nil {
		return o.failJob(ctx, job, models.JobStageStarting, err)
	}

	modules, err := o.runSkeleton(ctx, job, course)
	if err != nil {
		return o.failJob(ctx, job, models.JobStageSkeleton, err)
	}

	if err := o.runLessons(ctx, job, course, modules); err != nil {
		return o.failJob(ctx, job, models.JobStageLessons, err)
	}

	if err := o.runQuizzes(ctx, job, course, modules); err != nil {
		return o.failJob(ctx, job, models.JobStageQuizzes, err)
	}

	if err := o.runResources(ctx, job, course, modules); err != nil {
		return o.failJob(ctx, job, models.JobStageResources, err)
	}

	if err := o.runFinalize(ctx, job, course); err != nil {
		return o.failJob(ctx, job, models.JobStageFinalize, err)
	}

	if err := o.jobStorage.MarkSucceeded(ctx, job.ID); err != nil {
		return o.failJob(ctx, job, models.JobStageFinalize, err)
	}
	o.event(ctx, job.ID, models.JobStageFinalize, models.EventLevelInfo, "Course generation completed", map[string]interface{}{
		"course_id": course.ID,
	})

	o.logger.Info().
		Str("job_id", job.ID).
		Str("course_id", course.ID).
		Dur("duration", time.Since(startTime)).
		Msg("Course generation pipeline completed")
	return nil
}

// runSkeleton executes stage 1. Policy: one immediate retry with the same
// inputs, then one attempt against the mock provider; if that also fails the
// job is fatal.
func (o *Orchestrator) runSkeleton(ctx context.Context, job *models.Job, course *models.Course) ([]models.Module, error) {
	o.progress(ctx, job.ID, 0, models.JobStageSkeleton, "Generating course skeleton")
	o.event(ctx, job.ID, models.JobStageSkeleton, models.EventLevelInfo, "Generating course skeleton", nil)

	fromFallback := false
	drafts, err := o.content.GenerateSkeleton(ctx, course.Topic, course.Level, course.TimePerDay)
	if err != nil {
		o.event(ctx, job.ID, models.JobStageSkeleton, models.EventLevelWarn, "Skeleton generation failed, retrying", map[string]interface{}{
			"error": err.Error(),
		})
		o.progress(ctx, job.ID, progressSkeletonRetry, models.JobStageSkeleton, "Retrying course skeleton")

		drafts, err = o.content.GenerateSkeleton(ctx, course.Topic, course.Level, course.TimePerDay)
	}
	if err != nil && o.content.Mode() != interfaces.ProviderModeMock {
		o.event(ctx, job.ID, models.JobStageSkeleton, models.EventLevelWarn, "Skeleton generation failed twice, falling back to mock provider", map[string]interface{}{
			"error": err.Error(),
		})
		fromFallback = true
		drafts, err = o.mock.GenerateSkeleton(ctx, course.Topic, course.Level, course.TimePerDay)
	}
	if err != nil {
		return nil, err
	}

	modules := make([]models.Module, 0, len(drafts))
	for i, draft := range drafts {
		module := models.Module{
			ID:          "mod_" + uuid.New().String(),
			CourseID:    course.ID,
			Position:    i,
			Title:       draft.Title,
			Description: draft.Description,
			Outcomes:    draft.Outcomes,
			Fallback:    fromFallback,
		}
		if err := o.courseStorage.AppendModule(ctx, &module); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	o.progress(ctx, job.ID, progressSkeletonDone, models.JobStageSkeleton, "Course skeleton ready")
	o.event(ctx, job.ID, models.JobStageSkeleton, models.EventLevelInfo, "Course skeleton ready", map[string]interface{}{
		"module_count": len(modules),
		"fallback":     fromFallback,
	})
	return modules, nil
}

// runLessons executes stage 2. Provider failure for a module synthesizes
// exactly four fallback lessons and continues; only persistence errors fail
// the job.
func (o *Orchestrator) runLessons(ctx context.Context, job *models.Job, course *models.Course, modules []models.Module) error {
	o.progress(ctx, job.ID, progressSkeletonDone, models.JobStageLessons, "Generating lessons")
	o.event(ctx, job.ID, models.JobStageLessons, models.EventLevelInfo, "Generating lessons", nil)

	for i, module := range modules {
		fromFallback := false
		drafts, err := o.content.GenerateLessons(ctx, course.Topic, module, course.TimePerDay)
		if err != nil {
			o.event(ctx, job.ID, models.JobStageLessons, models.EventLevelWarn, fmt.Sprintf("Lesson generation failed for module %q, using fallback lessons", module.Title), map[string]interface{}{
				"module_id": module.ID,
				"error":     err.Error(),
			})
			drafts = synthesizeLessons(module, course.TimePerDay)
			fromFallback = true
		}

		lessons := make([]models.Lesson, 0, len(drafts))
		for pos, draft := range drafts {
			lessons = append(lessons, models.Lesson{
				ID:       "lsn_" + uuid.New().String(),
				ModuleID: module.ID,
				Position: pos,
				Title:    draft.Title,
				Kind:     draft.Kind,
				Minutes:  draft.Minutes,
				Fallback: fromFallback,
			})
		}
		if err := o.courseStorage.AppendLessons(ctx, lessons); err != nil {
			return err
		}

		percent := interpolate(progressSkeletonDone, progressLessonsDone, i+1, len(modules))
		o.progress(ctx, job.ID, percent, models.JobStageLessons, fmt.Sprintf("Lessons ready for module %d of %d", i+1, len(modules)))
	}

	o.event(ctx, job.ID, models.JobStageLessons, models.EventLevelInfo, "Lessons generated for all modules", nil)
	return nil
}

// runQuizzes executes stage 3. Provider failure for a module synthesizes a
// three-question placeholder quiz and continues.
func (o *Orchestrator) runQuizzes(ctx context.Context, job *models.Job, course *models.Course, modules []models.Module) error {
	o.progress(ctx, job.ID, progressLessonsDone, models.JobStageQuizzes, "Generating quizzes")
	o.event(ctx, job.ID, models.JobStageQuizzes, models.EventLevelInfo, "Generating quizzes", nil)

	for i, module := range modules {
		fromFallback := false
		draft, err := o.content.GenerateQuiz(ctx, course.Topic, module)
		if err != nil {
			o.event(ctx, job.ID, models.JobStageQuizzes, models.EventLevelWarn, fmt.Sprintf("Quiz generation failed for module %q, using fallback quiz", module.Title), map[string]interface{}{
				"module_id": module.ID,
				"error":     err.Error(),
			})
			draft = synthesizeQuiz(module)
			fromFallback = true
		}

		quiz := models.Quiz{
			ID:        "qz_" + uuid.New().String(),
			ModuleID:  module.ID,
			Questions: draft.Questions,
			Fallback:  fromFallback,
		}
		if err := o.courseStorage.AppendQuiz(ctx, &quiz); err != nil {
			return err
		}

		percent := interpolate(progressLessonsDone, progressQuizzesDone, i+1, len(modules))
		o.progress(ctx, job.ID, percent, models.JobStageQuizzes, fmt.Sprintf("Quiz ready for module %d of %d", i+1, len(modules)))
	}

	o.event(ctx, job.ID, models.JobStageQuizzes, models.EventLevelInfo, "Quizzes generated for all modules", nil)
	return nil
}

// runResources executes stage 4. Search failure for a module logs a warning
// and appends zero resources; strictly non-fatal.
func (o *Orchestrator) runResources(ctx context.Context, job *models.Job, course *models.Course, modules []models.Module) error {
	o.progress(ctx, job.ID, progressQuizzesDone, models.JobStageResources, "Finding video resources")
	o.event(ctx, job.ID, models.JobStageResources, models.EventLevelInfo, "Finding video resources", nil)

	for i, module := range modules {
		query := fmt.Sprintf("%s %s tutorial", course.Topic, module.Title)
		found, err := o.videoSearch.Search(ctx, query, o.maxVideoResults)
		if err != nil {
			o.logger.Warn().Err(err).
				Str("job_id", job.ID).
				Str("module_id", module.ID).
				Msg("Video search failed, continuing without resources")
			o.event(ctx, job.ID, models.JobStageResources, models.EventLevelWarn, fmt.Sprintf("Video search failed for module %q, continuing without resources", module.Title), map[string]interface{}{
				"module_id": module.ID,
				"error":     err.Error(),
			})
			found = nil
		}

		if len(found) > o.maxVideoResults {
			found = found[:o.maxVideoResults]
		}
		resources := make([]models.VideoResource, 0, len(found))
		for pos, r := range found {
			r.ID = "res_" + uuid.New().String()
			r.ModuleID = module.ID
			r.Position = pos
			resources = append(resources, r)
		}
		if len(resources) > 0 {
			if err := o.courseStorage.AppendResources(ctx, resources); err != nil {
				return err
			}
		}

		percent := interpolate(progressQuizzesDone, progressResourcesDone, i+1, len(modules))
		o.progress(ctx, job.ID, percent, models.JobStageResources, fmt.Sprintf("Resources ready for module %d of %d", i+1, len(modules)))
	}

	o.event(ctx, job.ID, models.JobStageResources, models.EventLevelInfo, "Video resources attached", nil)
	return nil
}

// runFinalize executes stage 5. Any failure here is fatal.
func (o *Orchestrator) runFinalize(ctx context.Context, job *models.Job, course *models.Course) error {
	o.progress(ctx, job.ID, progressResourcesDone, models.JobStageFinalize, "Finalizing course")
	o.event(ctx, job.ID, models.JobStageFinalize, models.EventLevelInfo, "Finalizing course", nil)

	if err := o.courseStorage.MarkCourseActive(ctx, course.ID); err != nil {
		return err
	}

	o.progress(ctx, job.ID, progressComplete, models.JobStageFinalize, "Completed")
	return nil
}

// failJob transitions the job to failed with a classified error kind. The
// original error is returned for the dispatcher log.
func (o *Orchestrator) failJob(ctx context.Context, job *models.Job, stage models.JobStage, cause error) error {
	kind := models.KindOf(cause)
	o.logger.Error().Err(cause).
		Str("job_id", job.ID).
		Str("stage", string(stage)).
		Str("error_kind", string(kind)).
		Msg("Course generation pipeline failed")

	o.event(ctx, job.ID, stage, models.EventLevelError, cause.Error(), map[string]interface{}{
		"error_kind": string(kind),
	})

	if err := o.jobStorage.MarkFailed(ctx, job.ID, kind, cause.Error()); err != nil {
		o.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job failure")
	}
	return cause
}

// progress applies a monotonic progress update; failures are logged, not
// propagated, so a progress write never fails a stage.
func (o *Orchestrator) progress(ctx context.Context, jobID string, percent int, stage models.JobStage, message string) {
	if err := o.jobStorage.UpdateProgress(ctx, jobID, percent, stage, message); err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Int("percent", percent).Msg("Failed to update job progress")
	}
}

// event appends one audit log entry; failures are logged, not propagated.
func (o *Orchestrator) event(ctx context.Context, jobID string, stage models.JobStage, level models.EventLevel, message string, payload map[string]interface{}) {
	evt := &models.JobEvent{
		JobID:     jobID,
		Stage:     stage,
		Level:     level,
		Message:   message,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := o.eventStorage.AppendEvent(ctx, evt); err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to append job event")
	}
}

// interpolate maps "done of total" onto the [start, end] percent range.
func interpolate(start, end, done, total int) int {
	if total <= 0 {
		return end
	}
	return start + (end-start)*done/total
}
