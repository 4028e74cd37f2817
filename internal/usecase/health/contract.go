package health

import "context"

// Pinger checks a remote dependency (SPARQL endpoint, language model, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CardCounter reports how many cards the loaded store holds.
type CardCounter interface {
	Len() int
}
