package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docrag/internal/domain"
	"docrag/internal/metrics"
)

const promptTemplate = `
You are a helpful AI assistant. Use the following context to answer the user's question clearly and completely.

Context:
%s

Question: %s

Answer:
`

// BuildPrompt grounds question in the retrieved context.
func BuildPrompt(retrieved, question string) string {
	return fmt.Sprintf(promptTemplate, retrieved, question)
}

// Assistant answers questions about the active document: it retrieves context
// through the pipeline and hands a grounded prompt to a generator.
type Assistant struct {
	pipeline  *Pipeline
	generator domain.Generator
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

func WithAssistantLogger(logger *zap.Logger) AssistantOption {
	return func(a *Assistant) { a.logger = logger }
}

func WithAssistantMetrics(c *metrics.Collector) AssistantOption {
	return func(a *Assistant) { a.metrics = c }
}

func NewAssistant(p *Pipeline, gen domain.Generator, opts ...AssistantOption) *Assistant {
	a := &Assistant{pipeline: p, generator: gen}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.logger = a.logger.Named("assistant")
	return a
}

// Ask retrieves context for question and generates an answer from it.
func (a *Assistant) Ask(ctx context.Context, question string, opts QueryOptions) (domain.Answer, error) {
	retrieved, err := a.pipeline.AnswerContext(ctx, question, opts)
	if err != nil {
		return domain.Answer{}, err
	}

	text, err := a.generator.Generate(ctx, BuildPrompt(retrieved.Context, question))
	a.metrics.RecordGeneration(metrics.Status(err))
	if err != nil {
		err = collaboratorError(domain.CodeGenerationService, err)
		a.logger.Warn("generation failed",
			zap.String("generation", retrieved.GenerationID),
			zap.String("code", string(domain.CodeOf(err))),
			zap.Bool("upstream", domain.IsCollaboratorError(err)),
			zap.Error(err))
		return domain.Answer{}, err
	}

	a.logger.Debug("question answered",
		zap.String("generation", retrieved.GenerationID),
		zap.Int("chunks", len(retrieved.UsedChunks)))
	return domain.Answer{
		Text:         text,
		Context:      retrieved.Context,
		UsedChunks:   retrieved.UsedChunks,
		GenerationID: retrieved.GenerationID,
	}, nil
}
