package llm

import (
	"fmt"
	"strings"

	"github.com/coursecraft/coursecraft/internal/models"
)

const systemPrompt = `You are a curriculum designer. You respond with strict JSON only:
no prose, no markdown fences, no commentary. Every response must be a single
JSON document matching the requested schema exactly.`

// skeletonPrompt asks for exactly five modules for the course.
func skeletonPrompt(topic string, level models.CourseLevel, timePerDay int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a learning path for the topic %q at %s level. ", topic, level)
	fmt.Fprintf(&b, "The learner has %d minutes per day.\n\n", timePerDay)
	b.WriteString(`Return a JSON array of exactly 5 modules, ordered from fundamentals to mastery:
[
  {
    "title": "string",
    "description": "one or two sentences",
    "outcomes": ["2 to 6 learning outcome strings"]
  }
]`)
	return b.String()
}

// lessonsPrompt asks for 3-10 lesson steps for one module.
func lessonsPrompt(topic string, module models.Module, timePerDay int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create lessons for the module %q of a course on %q.\n", module.Title, topic)
	fmt.Fprintf(&b, "Module description: %s\n", module.Description)
	fmt.Fprintf(&b, "The learner has %d minutes per day; size lessons accordingly.\n\n", timePerDay)
	b.WriteString(`Return a JSON array of 3 to 10 ordered lesson steps:
[
  {
    "title": "string",
    "type": "learn|practice|apply",
    "estimated_minutes": 1-60
  }
]`)
	return b.String()
}

// quizPrompt asks for one quiz with 5-15 questions for one module.
func quizPrompt(topic string, module models.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a quiz for the module %q of a course on %q.\n\n", module.Title, topic)
	b.WriteString(`Return a JSON object:
{
  "questions": [
    {
      "prompt": "string",
      "kind": "mcq|short|code",
      "options": ["required for mcq, at least 2"],
      "answer_key": "for mcq must be one of options"
    }
  ]
}
Include 5 to 15 questions, mixing kinds.`)
	return b.String()
}
