// Package embedding wraps the embedding provider with logging, chunked batching
// and a vector dimension check.
package embedding

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
)

// DefaultMaxAPIBatchSize matches the default client batch limit of
// text-embeddings-inference.
const DefaultMaxAPIBatchSize = 32

// InstrumentedEmbedder logs embedding calls, splits large batches and rejects
// vectors whose dimension differs from the card store's.
type InstrumentedEmbedder struct {
	inner        domain.Embedder
	model        string
	dimensions   int
	maxBatchSize int
	logger       *zap.Logger
}

// Option configures an InstrumentedEmbedder.
type Option func(*InstrumentedEmbedder)

// WithDimensions makes every returned vector be checked against dims.
func WithDimensions(dims int) Option {
	return func(p *InstrumentedEmbedder) { p.dimensions = dims }
}

// WithMaxBatchSize overrides DefaultMaxAPIBatchSize.
func WithMaxBatchSize(n int) Option {
	return func(p *InstrumentedEmbedder) {
		if n > 0 {
			p.maxBatchSize = n
		}
	}
}

// NewInstrumentedEmbedder wraps inner. provider and model label every log line.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger, opts ...Option,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &InstrumentedEmbedder{
		inner:        inner,
		model:        model,
		maxBatchSize: DefaultMaxAPIBatchSize,
		logger:       logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Embed embeds one question and checks the vector dimension.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		p.logger.Error("Embedding failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := p.checkDims(result.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}

	p.logger.Debug("Embedded text",
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed sends texts in chunks of at most the configured batch size and
// concatenates the results in input order. The first failing chunk aborts.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	offset := 0
	for chunk := range slices.Chunk(texts, p.maxBatchSize) {
		res, err := p.embedChunk(ctx, chunk)
		if err != nil {
			p.logger.Error("Embedding chunk failed",
				zap.Int("offset", offset),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed (chunk at %d): %w", offset, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
		offset += len(chunk)
	}

	p.logger.Debug("Embedded batch",
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (p *InstrumentedEmbedder) embedChunk(ctx context.Context, chunk []string) (domain.BatchEmbeddingResult, error) {
	res, err := p.embedInner(ctx, chunk)
	if err != nil {
		return res, err
	}
	if len(res.Embeddings) != len(chunk) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d vectors for %d texts: %w",
			len(res.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
	}
	for _, v := range res.Embeddings {
		if err := p.checkDims(v); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
	}
	return res, nil
}

func (p *InstrumentedEmbedder) embedInner(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts) //nolint:wrapcheck // wrapped by BatchEmbed
	}
	return domain.BatchFallback(ctx, p.inner, texts)
}

func (p *InstrumentedEmbedder) checkDims(v []float32) error {
	if p.dimensions > 0 && len(v) != p.dimensions {
		return fmt.Errorf("embedding has %d dimensions, expected %d (model %s): %w",
			len(v), p.dimensions, p.model, domain.ErrEmbeddingProviderError)
	}
	return nil
}
