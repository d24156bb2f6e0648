// Package gemini implements the embedder and generator collaborators on the
// Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"docrag/internal/domain"
)

const (
	providerName          = "gemini"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultChatModel      = "gemini-2.0-flash"
)

// modelsAPI is the subset of *genai.Models used here.
type modelsAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Gemini client.
type Config struct {
	APIKeyEnv  string
	Model      string
	APIVersion string
}

func newModels(ctx context.Context, cfg Config) (modelsAPI, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "missing API key in env %s", cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: cfg.APIVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client.Models, nil
}

// Embedder embeds texts with one batched EmbedContent call.
type Embedder struct {
	models modelsAPI
	model  string
	logger *zap.Logger
}

func NewEmbedder(ctx context.Context, cfg Config, logger *zap.Logger) (*Embedder, error) {
	models, err := newModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newEmbedder(models, cfg.Model, logger), nil
}

func newEmbedder(models modelsAPI, model string, logger *zap.Logger) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{models: models, model: model, logger: logger.Named("gemini.embedder")}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	resp, err := e.models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		e.logger.Warn("embed content failed", zap.String("model", e.model), zap.Int("texts", len(texts)), zap.Error(err))
		return nil, serviceError(domain.CodeEmbeddingService, "embed content", err)
	}
	return vectorsFromResponse(resp, len(texts))
}

// vectorsFromResponse accepts only a response with exactly want non-empty
// vectors of equal length.
func vectorsFromResponse(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil {
		return nil, serviceError(domain.CodeEmbeddingService, "empty embedding response", nil)
	}
	if len(resp.Embeddings) != want {
		return nil, serviceError(domain.CodeEmbeddingService,
			fmt.Sprintf("got %d embeddings for %d texts", len(resp.Embeddings), want), nil)
	}
	out := make([][]float32, want)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, serviceError(domain.CodeEmbeddingService, fmt.Sprintf("embedding %d is empty", i), nil)
		}
		if i > 0 && len(emb.Values) != len(out[0]) {
			return nil, serviceError(domain.CodeEmbeddingService,
				fmt.Sprintf("embedding %d has dimension %d, want %d", i, len(emb.Values), len(out[0])), nil)
		}
		out[i] = emb.Values
	}
	return out, nil
}

// Generator answers prompts with GenerateContent.
type Generator struct {
	models modelsAPI
	model  string
	logger *zap.Logger
}

func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	models, err := newModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newGenerator(models, cfg.Model, logger), nil
}

func newGenerator(models modelsAPI, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultChatModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{models: models, model: model, logger: logger.Named("gemini.generator")}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Warn("generate content failed", zap.String("model", g.model), zap.Error(err))
		return "", serviceError(domain.CodeGenerationService, "generate content", err)
	}
	return textFromResponse(resp)
}

// textFromResponse concatenates the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", serviceError(domain.CodeEmptyGeneration, "response has no candidates", nil)
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", serviceError(domain.CodeEmptyGeneration, "first candidate has no content", nil)
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", serviceError(domain.CodeEmptyGeneration, "first candidate has no text", nil)
	}
	return text, nil
}

func serviceError(code domain.ErrorCode, msg string, cause error) *domain.Error {
	e := domain.NewError(code, msg).WithProvider(providerName)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}
