package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// Usage counts the remote work spent on one question. The ask loop puts it in
// the context; retrieval and generation add to it. A nil *Usage ignores writes.
type Usage struct {
	embeddingTokens atomic.Int64
	embeddingCalls  atomic.Int64
	llmCalls        atomic.Int64
}

// NewContextWithUsage returns a context carrying a fresh collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector, or nil if none is set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbedding records one embedding call and its tokens. Cache hits report 0 tokens.
func (u *Usage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.embeddingCalls.Add(1)
	u.embeddingTokens.Add(int64(tokens))
}

// AddLLMCall records one language model call.
func (u *Usage) AddLLMCall() {
	if u != nil {
		u.llmCalls.Add(1)
	}
}

// EmbeddingTokens returns the tokens consumed by embedding calls.
func (u *Usage) EmbeddingTokens() int64 {
	if u == nil {
		return 0
	}
	return u.embeddingTokens.Load()
}

// EmbeddingCalls returns how many texts were embedded.
func (u *Usage) EmbeddingCalls() int64 {
	if u == nil {
		return 0
	}
	return u.embeddingCalls.Load()
}

// LLMCalls returns how many generations were requested.
func (u *Usage) LLMCalls() int64 {
	if u == nil {
		return 0
	}
	return u.llmCalls.Load()
}
