package retrieval

import (
	"context"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Index searches card vectors.
type Index interface {
	Search(vec []float32, k int) ([]card.Scored, error)
	Len() int
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
