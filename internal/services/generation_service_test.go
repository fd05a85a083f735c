package services

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/testutil"
)

func TestGenerationService_Generate(t *testing.T) {
	fields := generation.PromptFields{Subject: "Science", Grade: "5th grade", Topic: "Photosynthesis"}

	tests := []struct {
		name      string
		generator *testutil.MockGenerator
		wantErr   bool
	}{
		{"success", &testutil.MockGenerator{Content: "# Photosynthesis", Model: "gpt-4o-mini"}, false},
		{"upstream error", &testutil.MockGenerator{Err: stderrors.New("429 too many requests")}, true},
		{"empty content", &testutil.MockGenerator{Content: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewGenerationService(tt.generator, newTestLogger())
			res, err := service.Generate(context.Background(), fields)

			if tt.generator.Calls != 1 {
				t.Errorf("generator called %d times, want exactly 1", tt.generator.Calls)
			}
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeGenerationFailed) {
					t.Errorf("Generate() error = %v, want GENERATION_FAILED", err)
				}
				if res != nil {
					t.Errorf("Generate() returned partial output %+v", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if res.Content != "# Photosynthesis" {
				t.Errorf("Content = %q", res.Content)
			}
			if tt.generator.LastPrompt != generation.BuildPrompt(fields) {
				t.Error("generator did not receive the built prompt")
			}
			if !strings.Contains(tt.generator.LastSystem, "curriculum designer") {
				t.Errorf("system prompt = %q", tt.generator.LastSystem)
			}
		})
	}
}

func TestGenerationService_NotConfigured(t *testing.T) {
	service := NewGenerationService(nil, newTestLogger())

	_, err := service.Generate(context.Background(), generation.PromptFields{Subject: "Math", Grade: "1", Topic: "Counting"})
	if !errors.HasCode(err, errors.ErrCodeGenerationFailed) {
		t.Errorf("Generate() error = %v, want GENERATION_FAILED", err)
	}
}
