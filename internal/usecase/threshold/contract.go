package threshold

import (
	"context"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Retriever returns cards ranked by similarity to text.
type Retriever interface {
	Search(ctx context.Context, text string, k int) ([]card.Scored, error)
}
