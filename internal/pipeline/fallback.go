package pipeline

import (
	"fmt"

	"github.com/coursecraft/coursecraft/internal/models"
)

// fallbackLessonCount is fixed: the even time split below depends on it.
const fallbackLessonCount = 4

// fallbackQuizQuestionCount is deliberately below the provider minimum; a
// fallback quiz is a placeholder, not provider-grade content.
const fallbackQuizQuestionCount = 3

var fallbackQuizOptions = []string{"Option A", "Option B", "Option C", "Option D"}

// synthesizeLessons builds exactly four lessons for a module whose lesson
// generation failed. The daily time budget is split evenly; the last lesson
// is typed apply and the others alternate learn/practice.
func synthesizeLessons(module models.Module, timePerDay int) []models.LessonDraft {
	minutes := timePerDay / fallbackLessonCount
	if minutes < models.MinLessonMinutes {
		minutes = models.MinLessonMinutes
	}
	if minutes > models.MaxLessonMinutes {
		minutes = models.MaxLessonMinutes
	}

	kinds := []models.LessonKind{
		models.LessonKindLearn,
		models.LessonKindPractice,
		models.LessonKindLearn,
		models.LessonKindApply,
	}

	drafts := make([]models.LessonDraft, 0, fallbackLessonCount)
	for i := 0; i < fallbackLessonCount; i++ {
		drafts = append(drafts, models.LessonDraft{
			Title:   fmt.Sprintf("%s - Part %d", module.Title, i+1),
			Kind:    kinds[i],
			Minutes: minutes,
		})
	}
	return drafts
}

// synthesizeQuiz builds a three-question placeholder quiz for a module whose
// quiz generation failed.
func synthesizeQuiz(module models.Module) models.QuizDraft {
	draft := models.QuizDraft{
		Questions: make([]models.Question, 0, fallbackQuizQuestionCount),
	}
	for i := 0; i < fallbackQuizQuestionCount; i++ {
		draft.Questions = append(draft.Questions, models.Question{
			Prompt:    fmt.Sprintf("Review question %d for %s", i+1, module.Title),
			Kind:      models.QuestionKindMCQ,
			Options:   fallbackQuizOptions,
			AnswerKey: "Option A",
		})
	}
	return draft
}
