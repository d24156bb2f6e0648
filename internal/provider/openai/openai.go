// Package openai implements the embedder and generator collaborators on any
// OpenAI-compatible API (OpenAI, Ollama, vLLM, ...).
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docrag/internal/domain"
)

const (
	providerName          = "openai"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o-mini"
)

// clientAPI is the subset of *goopenai.Client used here.
type clientAPI interface {
	CreateEmbeddings(ctx context.Context, conv goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a go-openai client using the provided configuration.
func NewClient(cfg Config) (*goopenai.Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "missing API key in env %s", cfg.APIKeyEnv)
	}
	clientCfg := goopenai.DefaultConfig(key)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return goopenai.NewClientWithConfig(clientCfg), nil
}

// Embedder embeds texts with one batched embeddings request.
type Embedder struct {
	client clientAPI
	model  string
	logger *zap.Logger
}

func NewEmbedder(client clientAPI, model string, logger *zap.Logger) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{client: client, model: model, logger: logger.Named("openai.embedder")}
}

// Embed implements domain.Embedder. Vectors are placed by the index the API
// reports, so out-of-order responses are still matched to their inputs.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: texts,
		Model: goopenai.EmbeddingModel(e.model),
	})
	if err != nil {
		e.logger.Warn("create embeddings failed", zap.String("model", e.model), zap.Int("texts", len(texts)), zap.Error(err))
		return nil, serviceError(domain.CodeEmbeddingService, "create embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, serviceError(domain.CodeEmbeddingService,
			fmt.Sprintf("got %d embeddings for %d texts", len(resp.Data), len(texts)), nil)
	}
	out := make([][]float32, len(texts))
	dim := 0
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || out[d.Index] != nil {
			return nil, serviceError(domain.CodeEmbeddingService, fmt.Sprintf("bad embedding index %d", d.Index), nil)
		}
		if len(d.Embedding) == 0 {
			return nil, serviceError(domain.CodeEmbeddingService, fmt.Sprintf("embedding %d is empty", d.Index), nil)
		}
		if dim == 0 {
			dim = len(d.Embedding)
		} else if len(d.Embedding) != dim {
			return nil, serviceError(domain.CodeEmbeddingService,
				fmt.Sprintf("embedding %d has dimension %d, want %d", d.Index, len(d.Embedding), dim), nil)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Generator answers prompts with a single-message chat completion.
type Generator struct {
	client clientAPI
	model  string
	logger *zap.Logger
}

func NewGenerator(client clientAPI, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultChatModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, model: model, logger: logger.Named("openai.generator")}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		g.logger.Warn("chat completion failed", zap.String("model", g.model), zap.Error(err))
		return "", serviceError(domain.CodeGenerationService, "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", serviceError(domain.CodeEmptyGeneration, "response has no choices", nil)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", serviceError(domain.CodeEmptyGeneration, "first choice has no text", nil)
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
