// Package retrieval finds the cards most similar to a question.
package retrieval

import (
	"context"
	"fmt"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Service embeds a query and searches the card index.
type Service struct {
	index Index
	embed Embedder
}

// New creates a retrieval service.
func New(index Index, embed Embedder) *Service {
	return &Service{index: index, embed: embed}
}

// Search returns up to k cards ordered by descending similarity, ties in store order.
// An empty store or k <= 0 returns no cards without calling the embedder.
func (s *Service) Search(ctx context.Context, text string, k int) ([]card.Scored, error) {
	if k <= 0 || s.index.Len() == 0 {
		return nil, nil
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbedding(emb.TotalTokens)

	cards, err := s.index.Search(emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	return cards, nil
}
