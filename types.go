package graphrag

import (
	"context"
	"errors"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	healthuc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/health"
)

// AskResult is the outcome of one question: the last synthesized query (nil for
// a direct threshold answer) and exactly one of Answer and Error.
type AskResult = domain.AskResult

// Generator is a language model completing a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Embedder encodes text into a vector of the card store's dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HealthStatus is the aggregated component health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health runs the component checks: cards, sparql, llm and, when configured,
// embedding and cache. Status is "ok", "degraded" or "error".
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Healthy reports whether every check passed.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// embedderAdapter lifts a user Embedder into the internal provider contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, errors.Join(domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, a, texts)
}

// generatorAdapter wraps a user Generator. Its Ping always succeeds.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	out, err := a.inner.Generate(ctx, prompt, temperature)
	if err != nil {
		return "", &domain.GenerationError{Provider: "custom", Err: err}
	}
	return out, nil
}

func (a *generatorAdapter) Ping(context.Context) error { return nil }
