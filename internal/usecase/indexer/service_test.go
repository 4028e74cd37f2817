package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OiherR/TFG-UNIBASQ/internal/cardstore"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// lengthEmbedder maps each text to a unit vector tagged by its length.
type lengthEmbedder struct {
	mu      sync.Mutex
	batches []int
	failAt  int
}

func (e *lengthEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.mu.Lock()
	e.batches = append(e.batches, len(texts))
	n := len(e.batches)
	e.mu.Unlock()

	if e.failAt > 0 && n == e.failAt {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("tei: %w", domain.ErrEmbeddingProviderError)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func makeCards(t *testing.T, n int) []card.Card {
	t.Helper()
	cards := make([]card.Card, n)
	for i := range cards {
		c, err := card.New(i, card.Property, fmt.Sprintf("http://example.org/p%d", i), "",
			"PROPIEDAD "+strings.Repeat("x", i+1), nil)
		require.NoError(t, err)
		cards[i] = c
	}
	return cards
}

func TestEmbed_KeepsOrderAcrossBatches(t *testing.T) {
	emb := &lengthEmbedder{}
	cards := makeCards(t, 10)

	vectors, err := New(emb, Options{BatchSize: 3, Concurrency: 2}).Embed(context.Background(), cards)
	require.NoError(t, err)
	require.Len(t, vectors, 10)
	for i, v := range vectors {
		assert.Equal(t, float32(len(cards[i].Text())), v[0], "card %d", i)
	}
	assert.Len(t, emb.batches, 4)
}

func TestEmbed_FailureStopsBuild(t *testing.T) {
	emb := &lengthEmbedder{failAt: 1}

	_, err := New(emb, Options{BatchSize: 2, Concurrency: 1}).Embed(context.Background(), makeCards(t, 6))
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProviderError))
}

func TestBuild_WritesLoadableStore(t *testing.T) {
	src := t.TempDir()
	cards := makeCards(t, 5)
	vectors := make([][]float32, len(cards))
	for i := range vectors {
		vectors[i] = []float32{0, 0}
	}
	require.NoError(t, cardstore.Write(src, "", "", cards, vectors))

	out := t.TempDir()
	n, err := New(&lengthEmbedder{}, Options{}).
		Build(context.Background(), filepath.Join(src, cardstore.DefaultMetaFile), out, "", "")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	s, err := cardstore.Load(out, "", "")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2, s.Dimensions())
}

func TestBuild_MissingSource(t *testing.T) {
	_, err := New(&lengthEmbedder{}, Options{}).
		Build(context.Background(), filepath.Join(t.TempDir(), "nope.json"), t.TempDir(), "", "")
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
