// -----------------------------------------------------------------------
// Course - Learning-path artifact built incrementally by the pipeline
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CourseLevel is the declared experience level of the learner.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// CourseStatus tracks the artifact lifecycle. A course is created as a draft
// before its job starts and marked active by the final pipeline stage.
type CourseStatus string

const (
	CourseStatusDraft  CourseStatus = "draft"
	CourseStatusActive CourseStatus = "active"
)

// LessonKind types a lesson step.
type LessonKind string

const (
	LessonKindLearn    LessonKind = "learn"
	LessonKindPractice LessonKind = "practice"
	LessonKindApply    LessonKind = "apply"
)

// QuestionKind types a quiz question.
type QuestionKind string

const (
	QuestionKindMCQ   QuestionKind = "mcq"
	QuestionKindShort QuestionKind = "short"
	QuestionKindCode  QuestionKind = "code"
)

// Structural constraints on generated content. Provider output failing these
// is treated identically to a provider failure.
const (
	ModulesPerCourse   = 5
	MinOutcomes        = 2
	MaxOutcomes        = 6
	MinLessons         = 3
	MaxLessons         = 10
	MinLessonMinutes   = 1
	MaxLessonMinutes   = 60
	MinQuestions       = 5
	MaxQuestions       = 15
	MinMCQOptions      = 2
	MaxResourcesPerMod = 5
)

// Course is the root of the learning-path tree. The orchestrator only ever
// appends children and marks the course active; it never deletes or reorders.
type Course struct {
	ID         string       `json:"id" badgerhold:"key"`
	Topic      string       `json:"topic"`
	Level      CourseLevel  `json:"level"`
	TimePerDay int          `json:"time_per_day"` // minutes
	Status     CourseStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Module is one of exactly five ordered units in a course.
type Module struct {
	ID          string   `json:"id" badgerhold:"key"`
	CourseID    string   `json:"course_id" badgerhold:"index"`
	Position    int      `json:"position"` // 0-based, insertion order
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Outcomes    []string `json:"outcomes"`
	Fallback    bool     `json:"fallback"` // synthesized rather than provider-generated
}

// Lesson is an ordered step inside a module.
type Lesson struct {
	ID       string     `json:"id" badgerhold:"key"`
	ModuleID string     `json:"module_id" badgerhold:"index"`
	Position int        `json:"position"`
	Title    string     `json:"title"`
	Kind     LessonKind `json:"kind"`
	Minutes  int        `json:"minutes"`
	Fallback bool       `json:"fallback"`
}

// Quiz holds the questions for one module. Each module gets exactly one quiz.
type Quiz struct {
	ID        string     `json:"id" badgerhold:"key"`
	ModuleID  string     `json:"module_id" badgerhold:"index"`
	Questions []Question `json:"questions"`
	Fallback  bool       `json:"fallback"`
}

// Question is a single quiz item. Options and AnswerKey are only meaningful
// for mcq questions.
type Question struct {
	Prompt    string       `json:"prompt"`
	Kind      QuestionKind `json:"kind"`
	Options   []string     `json:"options,omitempty"`
	AnswerKey string       `json:"answer_key,omitempty"`
}

// VideoResource is a supplementary video attached to a module.
type VideoResource struct {
	ID           string `json:"id" badgerhold:"key"`
	ModuleID     string `json:"module_id" badgerhold:"index"`
	Position     int    `json:"position"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Channel      string `json:"channel,omitempty"`
	DurationSecs int    `json:"duration_seconds,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// NewCourse creates a draft course ready to be populated by a job.
func NewCourse(topic string, level CourseLevel, timePerDay int) *Course {
	now := time.Now()
	return &Course{
		ID:         "crs_" + uuid.New().String(),
		Topic:      topic,
		Level:      level,
		TimePerDay: timePerDay,
		Status:     CourseStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// -----------------------------------------------------------------------
// Provider draft types - unpersisted content shapes returned by providers
// -----------------------------------------------------------------------

// ModuleDraft is a provider-generated module before persistence.
type ModuleDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Outcomes    []string `json:"outcomes"`
}

// LessonDraft is a provider-generated lesson before persistence.
type LessonDraft struct {
	Title   string     `json:"title"`
	Kind    LessonKind `json:"type"`
	Minutes int        `json:"estimated_minutes"`
}

// QuizDraft is a provider-generated quiz before persistence.
type QuizDraft struct {
	Questions []Question `json:"questions"`
}

// ValidateSkeleton checks provider skeleton output against the structural
// constraints before it is accepted.
func ValidateSkeleton(drafts []ModuleDraft) error {
	if len(drafts) != ModulesPerCourse {
		return fmt.Errorf("skeleton must contain exactly %d modules, got %d", ModulesPerCourse, len(drafts))
	}
	for i, m := range drafts {
		if m.Title == "" {
			return fmt.Errorf("module %d: title is required", i)
		}
		if m.Description == "" {
			return fmt.Errorf("module %d: description is required", i)
		}
		if len(m.Outcomes) < MinOutcomes || len(m.Outcomes) > MaxOutcomes {
			return fmt.Errorf("module %d: outcomes must be %d-%d, got %d", i, MinOutcomes, MaxOutcomes, len(m.Outcomes))
		}
	}
	return nil
}

// ValidateLessons checks provider lesson output for one module.
func ValidateLessons(drafts []LessonDraft) error {
	if len(drafts) < MinLessons || len(drafts) > MaxLessons {
		return fmt.Errorf("lessons per module must be %d-%d, got %d", MinLessons, MaxLessons, len(drafts))
	}
	for i, l := range drafts {
		if l.Title == "" {
			return fmt.Errorf("lesson %d: title is required", i)
		}
		switch l.Kind {
		case LessonKindLearn, LessonKindPractice, LessonKindApply:
		default:
			return fmt.Errorf("lesson %d: invalid kind %q", i, l.Kind)
		}
		if l.Minutes < MinLessonMinutes || l.Minutes > MaxLessonMinutes {
			return fmt.Errorf("lesson %d: minutes must be %d-%d, got %d", i, MinLessonMinutes, MaxLessonMinutes, l.Minutes)
		}
	}
	return nil
}

// ValidateQuiz checks provider quiz output for one module. MCQ questions
// require at least two options with the answer key among them.
func ValidateQuiz(draft QuizDraft) error {
	if len(draft.Questions) < MinQuestions || len(draft.Questions) > MaxQuestions {
		return fmt.Errorf("quiz must have %d-%d questions, got %d", MinQuestions, MaxQuestions, len(draft.Questions))
	}
	for i, q := range draft.Questions {
		if q.Prompt == "" {
			return fmt.Errorf("question %d: prompt is required", i)
		}
		switch q.Kind {
		case QuestionKindMCQ:
			if len(q.Options) < MinMCQOptions {
				return fmt.Errorf("question %d: mcq requires at least %d options", i, MinMCQOptions)
			}
			found := false
			for _, opt := range q.Options {
				if opt == q.AnswerKey {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("question %d: answer key %q not among options", i, q.AnswerKey)
			}
		case QuestionKindShort, QuestionKindCode:
		default:
			return fmt.Errorf("question %d: invalid kind %q", i, q.Kind)
		}
	}
	return nil
}

// CourseTree is the full read model returned by the course content query.
type CourseTree struct {
	Course  *Course      `json:"course"`
	Modules []ModuleTree `json:"modules"`
}

// ModuleTree is a module with its children.
type ModuleTree struct {
	Module    Module          `json:"module"`
	Lessons   []Lesson        `json:"lessons"`
	Quiz      *Quiz           `json:"quiz,omitempty"`
	Resources []VideoResource `json:"resources"`
}
