// Package indexer builds the card store artifact: it embeds every card text
// and writes the vector index next to the card metadata.
package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/OiherR/TFG-UNIBASQ/internal/cardstore"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Defaults for Options zero values.
const (
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

// Options tunes batching.
type Options struct {
	BatchSize   int
	Concurrency int
	Logger      *zap.Logger
}

// Service embeds cards and writes the store.
type Service struct {
	embed       Embedder
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

// New creates an indexer.
func New(embed Embedder, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{embed: embed, batchSize: opts.BatchSize, concurrency: opts.Concurrency, logger: opts.Logger}
}

// Embed vectorizes every card text, keeping card order. Batches run concurrently;
// the first failure cancels the rest.
func (s *Service) Embed(ctx context.Context, cards []card.Card) ([][]float32, error) {
	vectors := make([][]float32, len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for offset := 0; offset < len(cards); offset += s.batchSize {
		end := min(offset+s.batchSize, len(cards))
		g.Go(func() error {
			texts := make([]string, 0, end-offset)
			for i := offset; i < end; i++ {
				texts = append(texts, cards[i].Text())
			}
			res, err := s.embed.BatchEmbed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed cards %d-%d: %w", offset, end-1, err)
			}
			if len(res.Embeddings) != len(texts) {
				return fmt.Errorf("embed cards %d-%d: got %d vectors: %w",
					offset, end-1, len(res.Embeddings), domain.ErrEmbeddingProviderError)
			}
			copy(vectors[offset:end], res.Embeddings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims := 0
	for i, v := range vectors {
		if i == 0 {
			dims = len(v)
			continue
		}
		if len(v) != dims {
			return nil, fmt.Errorf("card %d: %d dimensions, expected %d: %w",
				i, len(v), dims, domain.ErrEmbeddingProviderError)
		}
	}
	return vectors, nil
}

// Build reads cards from srcMeta, embeds them and writes the store into outDir.
// It returns the number of indexed cards.
func (s *Service) Build(ctx context.Context, srcMeta, outDir, indexFile, metaFile string) (int, error) {
	start := time.Now()
	cards, err := cardstore.ReadCards(srcMeta)
	if err != nil {
		return 0, err
	}

	vectors, err := s.Embed(ctx, cards)
	if err != nil {
		return 0, err
	}

	if err := cardstore.Write(outDir, indexFile, metaFile, cards, vectors); err != nil {
		return 0, err
	}

	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	s.logger.Info("card store written",
		zap.String("source", srcMeta),
		zap.String("dir", filepath.Clean(outDir)),
		zap.Int("cards", len(cards)),
		zap.Int("dimensions", dims),
		zap.Duration("duration", time.Since(start)),
	)
	return len(cards), nil
}
