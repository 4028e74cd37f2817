package indexer

import (
	"context"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
)

// Embedder vectorizes card texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
