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

// CourseStorage implements the CourseStorage interface for Badger
type CourseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCourseStorage creates a new CourseStorage instance
func NewCourseStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CourseStorage {
	return &CourseStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CourseStorage) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		return fmt.Errorf("course ID is required")
	}
	if err := s.db.Store().Insert(course.ID, course); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to create course", err)
	}
	return nil
}

func (s *CourseStorage) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	if err := s.db.Store().Get(courseID, &course); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewKindError(models.ErrorKindCourseNotFound, fmt.Sprintf("course not found: %s", courseID))
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// DeleteCourse removes a draft course. Used only to roll back a submission
// whose job creation failed; the pipeline itself never deletes.
func (s *CourseStorage) DeleteCourse(ctx context.Context, courseID string) error {
	if err := s.db.Store().Delete(courseID, &models.Course{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *CourseStorage) AppendModule(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		return fmt.Errorf("module ID is required")
	}
	if err := s.db.Store().Insert(module.ID, module); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to append module", err)
	}
	return s.touchCourse(module.CourseID)
}

func (s *CourseStorage) AppendLessons(ctx context.Context, lessons []models.Lesson) error {
	for i := range lessons {
		if lessons[i].ID == "" {
			return fmt.Errorf("lesson ID is required")
		}
		if err := s.db.Store().Insert(lessons[i].ID, &lessons[i]); err != nil {
			return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to append lesson", err)
		}
	}
	return nil
}

func (s *CourseStorage) AppendQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		return fmt.Errorf("quiz ID is required")
	}
	if err := s.db.Store().Insert(quiz.ID, quiz); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to append quiz", err)
	}
	return nil
}

func (s *CourseStorage) AppendResources(ctx context.Context, resources []models.VideoResource) error {
	for i := range resources {
		if resources[i].ID == "" {
			return fmt.Errorf("resource ID is required")
		}
		if err := s.db.Store().Insert(resources[i].ID, &resources[i]); err != nil {
			return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to append resource", err)
		}
	}
	return nil
}

func (s *CourseStorage) MarkCourseActive(ctx context.Context, courseID string) error {
	var course models.Course
	if err := s.db.Store().Get(courseID, &course); err != nil {
		if err == badgerhold.ErrNotFound {
			return models.NewKindError(models.ErrorKindCourseNotFound, fmt.Sprintf("course not found: %s", courseID))
		}
		return fmt.Errorf("failed to get course for activation: %w", err)
	}

	course.Status = models.CourseStatusActive
	course.UpdatedAt = time.Now()
	if err := s.db.Store().Update(courseID, &course); err != nil {
		return models.WrapKindError(models.ErrorKindPersistenceWrite, "failed to mark course active", err)
	}
	return nil
}

func (s *CourseStorage) GetModules(ctx context.Context, courseID string) ([]models.Module, error) {
	var modules []models.Module
	if err := s.db.Store().Find(&modules, badgerhold.Where("CourseID").Eq(courseID).SortBy("Position")); err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	return modules, nil
}

// GetCourseTree assembles the full course read model.
func (s *CourseStorage) GetCourseTree(ctx context.Context, courseID string) (*models.CourseTree, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.GetModules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	tree := &models.CourseTree{
		Course:  course,
		Modules: make([]models.ModuleTree, 0, len(modules)),
	}

	for _, module := range modules {
		var lessons []models.Lesson
		if err := s.db.Store().Find(&lessons, badgerhold.Where("ModuleID").Eq(module.ID).SortBy("Position")); err != nil {
			return nil, fmt.Errorf("failed to get lessons for module %s: %w", module.ID, err)
		}

		var quizzes []models.Quiz
		if err := s.db.Store().Find(&quizzes, badgerhold.Where("ModuleID").Eq(module.ID)); err != nil {
			return nil, fmt.Errorf("failed to get quiz for module %s: %w", module.ID, err)
		}
		var quiz *models.Quiz
		if len(quizzes) > 0 {
			quiz = &quizzes[0]
		}

		var resources []models.VideoResource
		if err := s.db.Store().Find(&resources, badgerhold.Where("ModuleID").Eq(module.ID).SortBy("Position")); err != nil {
			return nil, fmt.Errorf("failed to get resources for module %s: %w", module.ID, err)
		}

		tree.Modules = append(tree.Modules, models.ModuleTree{
			Module:    module,
			Lessons:   lessons,
			Quiz:      quiz,
			Resources: resources,
		})
	}

	return tree, nil
}

func (s *CourseStorage) touchCourse(courseID string) error {
	var course models.Course
	if err := s.db.Store().Get(courseID, &course); err != nil {
		return nil // course timestamp update is best-effort
	}
	course.UpdatedAt = time.Now()
	if err := s.db.Store().Update(courseID, &course); err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Msg("Failed to touch course timestamp")
	}
	return nil
}
