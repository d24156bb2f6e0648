// Package service implements the retrieval pipeline: ingestion (chunk, embed,
// index, publish) and query (embed, search, assemble context).
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"docrag/internal/chunker"
	"docrag/internal/domain"
	"docrag/internal/metrics"
	"docrag/internal/store"
	"docrag/internal/vectorindex"
)

const contextSeparator = "\n\n"

// IngestOptions controls how a document is split.
type IngestOptions struct {
	Strategy  chunker.Strategy
	ChunkSize int
	Overlap   int
}

// DefaultIngestOptions returns 500-word windows overlapping by 50 words.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{Strategy: chunker.StrategyWord, ChunkSize: 500, Overlap: 50}
}

// QueryOptions controls retrieval.
type QueryOptions struct {
	TopK int
}

// DefaultQueryOptions returns the three nearest chunks.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{TopK: 3}
}

// Pipeline binds an embedder to a store. It is safe for concurrent use; the
// only shared state is the store, which is touched once per call.
type Pipeline struct {
	embedder     domain.Embedder
	store        *store.Store
	summarizer   domain.Summarizer
	maxSentences int
	metrics      *metrics.Collector
	logger       *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(c *metrics.Collector) PipelineOption {
	return func(p *Pipeline) { p.metrics = c }
}

// WithSummarizer attaches a document summary to every ingested generation.
func WithSummarizer(s domain.Summarizer, maxSentences int) PipelineOption {
	return func(p *Pipeline) {
		p.summarizer = s
		p.maxSentences = maxSentences
	}
}

func NewPipeline(embedder domain.Embedder, st *store.Store, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{embedder: embedder, store: st}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("pipeline")
	return p
}

// Ready reports whether a document has been ingested.
func (p *Pipeline) Ready() bool { return p.store.Ready() }

// Ingest replaces the active document with text. On any failure the previous
// generation stays active.
func (p *Pipeline) Ingest(ctx context.Context, text string, opts IngestOptions) (res domain.IngestResult, err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordIngest(metrics.Status(err), time.Since(start), res.ChunkCount)
		if err != nil {
			p.logger.Warn("ingest failed",
				zap.String("code", string(domain.CodeOf(err))),
				zap.Bool("upstream", domain.IsCollaboratorError(err)),
				zap.Error(err))
		}
	}()

	c, err := chunker.New(opts.Strategy, opts.ChunkSize, opts.Overlap)
	if err != nil {
		return domain.IngestResult{}, err
	}
	chunks, err := c.Chunk(text)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if len(chunks) == 0 {
		return domain.IngestResult{}, domain.NewError(domain.CodeEmptyDocument, "document produced no chunks")
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IngestResult{}, collaboratorError(domain.CodeEmbeddingService, err)
	}
	if len(vectors) != len(chunks) {
		return domain.IngestResult{}, domain.Errorf(domain.CodeEmbeddingMismatch,
			"embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	index, err := vectorindex.Build(vectors)
	if err != nil {
		return domain.IngestResult{}, err
	}

	var summary string
	if p.summarizer != nil {
		if summary, err = p.summarizer.Summarize(text, p.maxSentences); err != nil {
			return domain.IngestResult{}, err
		}
	}

	gen, err := p.store.Replace(chunks, index, summary)
	if err != nil {
		return domain.IngestResult{}, err
	}
	res = domain.IngestResult{
		ChunkCount:   len(gen.Chunks),
		Dimension:    gen.Index.Dimension(),
		GenerationID: gen.ID,
		Summary:      gen.Summary,
	}
	p.logger.Info("document ingested",
		zap.String("generation", gen.ID),
		zap.Int("chunks", res.ChunkCount),
		zap.Int("dimension", res.Dimension),
		zap.Int("chunk_size", opts.ChunkSize),
		zap.Int("overlap", opts.Overlap),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

// AnswerContext retrieves the chunks nearest to question and joins them,
// nearest first, into a context string. It does not call a generator.
func (p *Pipeline) AnswerContext(ctx context.Context, question string, opts QueryOptions) (res domain.RetrievalResult, err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordQuery(metrics.Status(err), time.Since(start))
	}()

	if opts.TopK < 1 {
		return domain.RetrievalResult{}, domain.Errorf(domain.CodeInvalidConfiguration, "top k must be >= 1, got %d", opts.TopK)
	}
	if !p.store.Ready() {
		return domain.RetrievalResult{}, domain.NewError(domain.CodeNotReady, "no document ingested")
	}

	vectors, err := p.embedder.Embed(ctx, []string{question})
	if err != nil {
		return domain.RetrievalResult{}, collaboratorError(domain.CodeEmbeddingService, err)
	}
	if len(vectors) != 1 {
		return domain.RetrievalResult{}, domain.Errorf(domain.CodeEmbeddingMismatch,
			"embedder returned %d vectors for 1 question", len(vectors))
	}

	gen, ok := p.store.Snapshot()
	if !ok {
		return domain.RetrievalResult{}, domain.NewError(domain.CodeNotReady, "no document ingested")
	}
	hits, err := gen.Index.Search(vectors[0], opts.TopK)
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	res = domain.RetrievalResult{
		UsedChunks:   make([]domain.Chunk, len(hits)),
		Distances:    make([]float64, len(hits)),
		GenerationID: gen.ID,
	}
	texts := make([]string, len(hits))
	for i, h := range hits {
		res.UsedChunks[i] = gen.Chunks[h.Position]
		res.Distances[i] = h.Distance
		texts[i] = gen.Chunks[h.Position].Text
	}
	res.Context = strings.Join(texts, contextSeparator)

	p.logger.Debug("context retrieved",
		zap.String("generation", gen.ID),
		zap.Int("top_k", opts.TopK),
		zap.Int("hits", len(hits)))
	return res, nil
}

// collaboratorError keeps typed collaborator errors as they are and tags
// untyped ones with code.
func collaboratorError(code domain.ErrorCode, err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	return domain.NewError(code, "collaborator call failed").WithCause(err)
}
