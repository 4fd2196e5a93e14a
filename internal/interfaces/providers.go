package interfaces

import (
	"context"

	"github.com/coursecraft/coursecraft/internal/models"
)

// ProviderMode indicates whether a provider talks to a real backend or
// synthesizes deterministic content locally.
type ProviderMode string

const (
	ProviderModeCloud ProviderMode = "cloud"
	ProviderModeMock  ProviderMode = "mock"
)

// ContentProvider generates structured course content. Implementations must
// validate output against the structural constraints in models before
// returning it; invalid shape is returned as an error, identical to a
// provider failure.
type ContentProvider interface {
	// GenerateSkeleton returns exactly five modules for the course.
	GenerateSkeleton(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error)

	// GenerateLessons returns 3-10 ordered lesson steps for one module.
	GenerateLessons(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error)

	// GenerateQuiz returns one quiz with 5-15 questions for one module.
	GenerateQuiz(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error)

	Mode() ProviderMode
	Close() error
}

// VideoSearchProvider finds supplementary videos for a module.
type VideoSearchProvider interface {
	// Search returns between zero and maxResults video resources.
	Search(ctx context.Context, query string, maxResults int) ([]models.VideoResource, error)

	Mode() ProviderMode
}
