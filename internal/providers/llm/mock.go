package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
)

// moduleThemes drives the deterministic five-module skeleton. The progression
// mirrors how the cloud prompt orders modules, fundamentals first.
var moduleThemes = []struct {
	titleFormat string
	descFormat  string
}{
	{"Foundations of %s", "Core concepts and terminology needed before any hands-on work with %s."},
	{"Working with %s", "Guided practice applying the fundamentals of %s to small, concrete exercises."},
	{"Intermediate %s", "Deeper techniques and common patterns used in real %s work."},
	{"Advanced %s", "Edge cases, performance considerations, and advanced tooling for %s."},
	{"%s in Practice", "A capstone unit consolidating everything learned about %s into a realistic project."},
}

// MockProvider synthesizes deterministic course content locally. It is used
// when no provider API key is configured, and as the stage-one fallback when
// the cloud provider fails repeatedly.
type MockProvider struct {
	logger arbor.ILogger
}

// NewMockProvider creates a mock content provider.
func NewMockProvider(logger arbor.ILogger) *MockProvider {
	return &MockProvider{logger: logger}
}

// GenerateSkeleton returns five deterministic modules derived from the topic.
func (p *MockProvider) GenerateSkeleton(ctx context.Context, topic string, level models.CourseLevel, timePerDay int) ([]models.ModuleDraft, error) {
	drafts := make([]models.ModuleDraft, 0, models.ModulesPerCourse)
	for i, theme := range moduleThemes {
		drafts = append(drafts, models.ModuleDraft{
			Title:       fmt.Sprintf(theme.titleFormat, topic),
			Description: fmt.Sprintf(theme.descFormat, topic),
			Outcomes: []string{
				fmt.Sprintf("Explain the key ideas covered in unit %d of %s", i+1, topic),
				fmt.Sprintf("Apply unit %d techniques to a practical %s exercise", i+1, topic),
			},
		})
	}

	p.logger.Debug().Str("topic", topic).Msg("Mock provider generated skeleton")
	return drafts, nil
}

// GenerateLessons returns four lessons sized to the learner's daily time.
func (p *MockProvider) GenerateLessons(ctx context.Context, topic string, module models.Module, timePerDay int) ([]models.LessonDraft, error) {
	minutes := clampMinutes(timePerDay / 4)
	drafts := []models.LessonDraft{
		{Title: fmt.Sprintf("Introduction to %s", module.Title), Kind: models.LessonKindLearn, Minutes: minutes},
		{Title: fmt.Sprintf("Hands-on: %s", module.Title), Kind: models.LessonKindPractice, Minutes: minutes},
		{Title: fmt.Sprintf("Going deeper into %s", module.Title), Kind: models.LessonKindLearn, Minutes: minutes},
		{Title: fmt.Sprintf("Apply what you learned in %s", module.Title), Kind: models.LessonKindApply, Minutes: minutes},
	}

	p.logger.Debug().Str("module", module.Title).Msg("Mock provider generated lessons")
	return drafts, nil
}

// GenerateQuiz returns five multiple-choice questions about the module.
func (p *MockProvider) GenerateQuiz(ctx context.Context, topic string, module models.Module) (models.QuizDraft, error) {
	options := []string{"Option A", "Option B", "Option C", "Option D"}
	draft := models.QuizDraft{
		Questions: make([]models.Question, 0, models.MinQuestions),
	}
	for i := 0; i < models.MinQuestions; i++ {
		draft.Questions = append(draft.Questions, models.Question{
			Prompt:    fmt.Sprintf("Question %d: which statement about %s is correct?", i+1, module.Title),
			Kind:      models.QuestionKindMCQ,
			Options:   options,
			AnswerKey: "Option A",
		})
	}

	p.logger.Debug().Str("module", module.Title).Msg("Mock provider generated quiz")
	return draft, nil
}

func (p *MockProvider) Mode() interfaces.ProviderMode {
	return interfaces.ProviderModeMock
}

func (p *MockProvider) Close() error {
	return nil
}

func clampMinutes(m int) int {
	if m < models.MinLessonMinutes {
		return models.MinLessonMinutes
	}
	if m > models.MaxLessonMinutes {
		return models.MaxLessonMinutes
	}
	return m
}
