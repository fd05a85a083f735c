package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

var (
	errGeneratorMissing = stderrors.New("text generation is not configured")
	errEmptyCompletion  = stderrors.New("generation returned no content")
)

// GenerationService implements generation.Service
type GenerationService struct {
	generator generation.Generator
	logger    *logger.Logger
}

// NewGenerationService creates a new generation service; generator may be nil
func NewGenerationService(generator generation.Generator, log *logger.Logger) generation.Service {
	return &GenerationService{
		generator: generator,
		logger:    log,
	}
}

// Generate makes one upstream call with no retry
func (s *GenerationService) Generate(ctx context.Context, fields generation.PromptFields) (*generation.Result, error) {
	if s.generator == nil {
		return nil, errors.GenerationFailed(errGeneratorMissing)
	}

	start := time.Now()
	res, err := s.generator.Complete(ctx, generation.SystemPrompt, generation.BuildPrompt(fields))
	if err == nil && (res == nil || strings.TrimSpace(res.Content) == "") {
		err = errEmptyCompletion
	}
	if err != nil {
		metrics.RecordGeneration("error", time.Since(start))
		logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
			"subject": fields.Subject,
			"topic":   fields.Topic,
			"error":   err.Error(),
		}).Error("Lesson plan generation failed")
		return nil, errors.GenerationFailed(err)
	}

	metrics.RecordGeneration("success", time.Since(start))
	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"subject":  fields.Subject,
		"model":    res.Model,
		"duration": time.Since(start).String(),
	}).Info("Lesson plan generated")

	return res, nil
}
