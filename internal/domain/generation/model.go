package generation

import (
	"fmt"
	"strings"
)

// PromptFields are the structured inputs to a lesson plan prompt.
// The override fields replace the default instruction for their section.
type PromptFields struct {
	Subject         string `json:"subject" validate:"required,max=120"`
	Grade           string `json:"grade" validate:"required,max=60"`
	Topic           string `json:"topic" validate:"required,max=200"`
	Duration        string `json:"duration,omitempty" validate:"max=60"`
	Standards       string `json:"standards,omitempty" validate:"max=2000"`
	Objectives      string `json:"objectives,omitempty" validate:"max=2000"`
	Differentiation string `json:"differentiation,omitempty" validate:"max=2000"`
	Extensions      string `json:"extensions,omitempty" validate:"max=2000"`
}

// Result is generated lesson plan text with the model that produced it
type Result struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// SystemPrompt frames every request
const SystemPrompt = "You are an experienced teacher and curriculum designer. " +
	"Write practical, classroom-ready lesson plans in Markdown."

const defaultDuration = "45 minutes"

// BuildPrompt renders fields into the user message. Equal fields always
// produce the same prompt.
func BuildPrompt(f PromptFields) string {
	duration := strings.TrimSpace(f.Duration)
	if duration == "" {
		duration = defaultDuration
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed lesson plan for a %s %s class on %q.\n",
		strings.TrimSpace(f.Grade), strings.TrimSpace(f.Subject), strings.TrimSpace(f.Topic))
	fmt.Fprintf(&b, "Lesson length: %s.\n\n", duration)
	b.WriteString("Include the following sections:\n")

	section(&b, 1, "Standards", f.Standards,
		"List the curriculum standards this lesson addresses.")
	section(&b, 2, "Learning Objectives", f.Objectives,
		"Write three to five measurable objectives starting with an action verb.")
	b.WriteString("3. Materials: List everything the teacher and students need.\n")
	b.WriteString("4. Lesson Procedure: Break the lesson into timed phases with teacher and student actions.\n")
	b.WriteString("5. Assessment: Describe how understanding is checked during and after the lesson.\n")
	section(&b, 6, "Differentiation", f.Differentiation,
		"Give supports for struggling learners and challenges for advanced learners.")
	section(&b, 7, "Extensions", f.Extensions,
		"Suggest follow-up activities or homework that extend the lesson.")

	return b.String()
}

func section(b *strings.Builder, n int, title, override, fallback string) {
	text := strings.TrimSpace(override)
	if text == "" {
		text = fallback
	} else {
		text = "Use exactly these: " + text
	}
	fmt.Fprintf(b, "%d. %s: %s\n", n, title, text)
}

// Title derives a plan title from the fields
func Title(f PromptFields) string {
	return fmt.Sprintf("%s: %s (%s)", strings.TrimSpace(f.Subject), strings.TrimSpace(f.Topic), strings.TrimSpace(f.Grade))
}
