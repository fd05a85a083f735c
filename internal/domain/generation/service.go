package generation

import "context"

// Generator sends one prompt to a text generation backend
type Generator interface {
	// Complete returns the model output for the system and user messages.
	// It makes a single attempt.
	Complete(ctx context.Context, system, prompt string) (*Result, error)
}

// Service defines the interface for lesson plan generation.
// Output is not idempotent: the upstream model may return different text
// for identical fields.
type Service interface {
	// Generate builds the prompt from fields and returns the generated text.
	// Any upstream failure or empty output is GENERATION_FAILED.
	Generate(ctx context.Context, fields PromptFields) (*Result, error)
}
