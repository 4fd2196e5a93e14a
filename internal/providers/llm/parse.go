package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coursecraft/coursecraft/internal/models"
)

// extractJSON strips markdown fences and surrounding prose that models
// sometimes emit despite instructions, returning the raw JSON document.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		return strings.TrimSpace(trimmed)
	}

	// Fall back to the outermost bracket pair.
	start := strings.IndexAny(trimmed, "[{")
	if start < 0 {
		return trimmed
	}
	var end int
	if trimmed[start] == '[' {
		end = strings.LastIndex(trimmed, "]")
	} else {
		end = strings.LastIndex(trimmed, "}")
	}
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// parseSkeleton decodes and validates skeleton output. Malformed JSON or a
// shape violation both classify as content_generation_schema_invalid.
func parseSkeleton(text string) ([]models.ModuleDraft, error) {
	var drafts []models.ModuleDraft
	if err := json.Unmarshal([]byte(extractJSON(text)), &drafts); err != nil {
		return nil, models.WrapKindError(models.ErrorKindContentSchemaInvalid, "skeleton response is not valid JSON", err)
	}
	if err := models.ValidateSkeleton(drafts); err != nil {
		return nil, models.WrapKindError(models.ErrorKindContentSchemaInvalid, fmt.Sprintf("skeleton failed validation: %v", err), err)
	}
	return drafts, nil
}

func parseLessons(text string) ([]models.LessonDraft, error) {
	var drafts []models.LessonDraft
	if err := json.Unmarshal([]byte(extractJSON(text)), &drafts); err != nil {
		return nil, models.WrapKindError(models.ErrorKindContentSchemaInvalid, "lessons response is not valid JSON", err)
	}
	if err := models.ValidateLessons(drafts); err != nil {
		return nil, models.WrapKindError(models.ErrorKindContentSchemaInvalid, fmt.Sprintf("lessons failed validation: %v", err), err)
	}
	return drafts, nil
}

func parseQuiz(text string) (models.QuizDraft, error) {
	var draft models.QuizDraft
	if err := json.Unmarshal([]byte(extractJSON(text)), &draft); err != nil {
		return models.QuizDraft{}, models.WrapKindError(models.ErrorKindContentSchemaInvalid, "quiz response is not valid JSON", err)
	}
	if err := models.ValidateQuiz(draft); err != nil {
		return models.QuizDraft{}, models.WrapKindError(models.ErrorKindContentSchemaInvalid, fmt.Sprintf("quiz failed validation: %v", err), err)
	}
	return draft, nil
}
