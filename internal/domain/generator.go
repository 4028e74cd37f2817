package domain

import "context"

// Generator produces raw text from a prompt. Temperature 0 requests deterministic output.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}
