// Package cli wires configuration, providers and the retrieval pipeline into
// the docrag command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrag/internal/chunker"
	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/embedding/hashing"
	"docrag/internal/logging"
	"docrag/internal/metrics"
	"docrag/internal/provider/gemini"
	"docrag/internal/provider/openai"
	"docrag/internal/service"
	"docrag/internal/store"
	"docrag/internal/summarizer"
)

// app is the state shared by every subcommand once the root pre-run has loaded it.
type app struct {
	cfgFile string

	cfg       *config.AppConfig
	logger    *zap.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	server    *http.Server
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "docrag",
		Short:        "docrag: ask questions about a single text document",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"path to YAML config (defaults to ./config.yaml, then ~/.config/docrag/config.yaml)")

	root.AddCommand(newChunkCmd(a), newAskCmd(a), newTUICmd(a))
	return root
}

func (a *app) init() error {
	_ = godotenv.Load()

	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if a.cfgFile != "" {
		cfg, err = config.Load(a.cfgFile)
		path = a.cfgFile
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log)
	a.logger.Debug("config loaded", zap.String("path", path))

	a.registry = prometheus.NewRegistry()
	a.collector, err = metrics.NewCollector(cfg.Metrics.Namespace, a.registry, a.logger)
	if err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.logger.Info("metrics endpoint listening", zap.String("addr", addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics endpoint failed", zap.Error(err))
		}
	}()
}

func (a *app) close() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics endpoint shutdown", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// session holds one ingested document and answers questions against it.
type session struct {
	pipeline  *service.Pipeline
	assistant *service.Assistant
	topK      int
	result    domain.IngestResult
}

func (a *app) newSession(ctx context.Context, text string, ingest service.IngestOptions) (*session, error) {
	emb, err := a.buildEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	opts := []service.PipelineOption{service.WithLogger(a.logger), service.WithMetrics(a.collector)}
	switch a.cfg.Summarizer.Type {
	case "frequency":
		opts = append(opts, service.WithSummarizer(summarizer.NewFrequencySummarizer(), a.cfg.Summarizer.MaxSentences))
	case "none":
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown summarizer: %s", a.cfg.Summarizer.Type)
	}
	p := service.NewPipeline(emb, store.New(), opts...)

	gen, err := a.buildGenerator(ctx)
	if err != nil {
		return nil, err
	}
	s := &session{pipeline: p, topK: a.cfg.Retrieval.TopK}
	if gen != nil {
		s.assistant = service.NewAssistant(p, gen,
			service.WithAssistantLogger(a.logger), service.WithAssistantMetrics(a.collector))
	}

	s.result, err = p.Ingest(ctx, text, ingest)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ask answers with the generator when one is configured; otherwise the
// retrieved context is the answer.
func (s *session) ask(ctx context.Context, question string) (domain.Answer, error) {
	opts := service.QueryOptions{TopK: s.topK}
	if s.assistant != nil {
		return s.assistant.Ask(ctx, question, opts)
	}
	r, err := s.pipeline.AnswerContext(ctx, question, opts)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{
		Text:         r.Context,
		Context:      r.Context,
		UsedChunks:   r.UsedChunks,
		GenerationID: r.GenerationID,
	}, nil
}

func (a *app) ingestOptions() service.IngestOptions {
	return service.IngestOptions{
		Strategy:  chunker.Strategy(a.cfg.Chunker.Strategy),
		ChunkSize: a.cfg.Chunker.ChunkSize,
		Overlap:   a.cfg.Chunker.Overlap,
	}
}

func (a *app) buildEmbedder(ctx context.Context) (domain.Embedder, error) {
	ec := a.cfg.Embedder
	switch ec.Type {
	case "hashing":
		return hashing.NewEmbedder(ec.Hashing.Dimension), nil
	case "gemini":
		return gemini.NewEmbedder(ctx, geminiConfig(ec.Gemini), a.logger)
	case "openai":
		client, err := openai.NewClient(openAIConfig(ec.OpenAI))
		if err != nil {
			return nil, err
		}
		return openai.NewEmbedder(client, ec.OpenAI.Model, a.logger), nil
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown embedder: %s", ec.Type)
	}
}

// buildGenerator returns nil when generation is disabled.
func (a *app) buildGenerator(ctx context.Context) (domain.Generator, error) {
	gc := a.cfg.Generator
	switch gc.Type {
	case "none":
		return nil, nil
	case "gemini":
		return gemini.NewGenerator(ctx, geminiConfig(gc.Gemini), a.logger)
	case "openai":
		client, err := openai.NewClient(openAIConfig(gc.OpenAI))
		if err != nil {
			return nil, err
		}
		return openai.NewGenerator(client, gc.OpenAI.Model, a.logger), nil
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown generator: %s", gc.Type)
	}
}

func geminiConfig(c *config.GeminiConfig) gemini.Config {
	return gemini.Config{APIKeyEnv: c.APIKeyEnv, Model: c.Model, APIVersion: c.APIVersion}
}

func openAIConfig(c *config.OpenAIConfig) openai.Config {
	return openai.Config{
		BaseURL:   c.BaseURL,
		APIKeyEnv: c.APIKeyEnv,
		Model:     c.Model,
		Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
	}
}

// readDocuments concatenates the given files into one document.
func readDocuments(paths []string) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		parts = append(parts, string(b))
	}
	return strings.Join(parts, "\n\n"), nil
}
