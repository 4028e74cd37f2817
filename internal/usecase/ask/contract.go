package ask

import (
	"context"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Executor runs a read-only query against the triple store.
type Executor interface {
	Select(ctx context.Context, query string) (domain.ExecutionResult, error)
}

// Retriever supplies context cards for the generation prompt.
type Retriever interface {
	Search(ctx context.Context, text string, k int) ([]card.Scored, error)
}

// Shortcut answers a question directly when it can. ok=false declines.
type Shortcut interface {
	Answer(ctx context.Context, question string) (answer string, ok bool, err error)
}
