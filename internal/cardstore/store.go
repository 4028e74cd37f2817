// Package cardstore loads the card artifact: a parquet vector index positionally
// aligned with a JSON metadata document. The store is read-only after Load and
// safe for concurrent readers.
package cardstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// Default artifact file names.
const (
	DefaultIndexFile = "content.parquet"
	DefaultMetaFile  = "content_meta.json"
)

// Store holds cards and their unit-length vectors.
type Store struct {
	cards   []card.Card
	vectors [][]float32
	dims    int
}

// Load reads both artifacts from dir. Any missing or misaligned file yields a
// *domain.ConfigurationError naming the offending path.
func Load(dir, indexFile, metaFile string) (*Store, error) {
	if indexFile == "" {
		indexFile = DefaultIndexFile
	}
	if metaFile == "" {
		metaFile = DefaultMetaFile
	}
	indexPath := filepath.Join(dir, indexFile)
	metaPath := filepath.Join(dir, metaFile)

	for _, p := range []string{indexPath, metaPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, domain.NewConfigurationError(p, "card store file not found")
			}
			return nil, domain.NewConfigurationError(p, err.Error())
		}
	}

	rows, err := parquet.ReadFile[vectorRow](indexPath)
	if err != nil {
		return nil, domain.NewConfigurationError(indexPath, fmt.Sprintf("read vector index: %v", err))
	}

	cards, err := ReadCards(metaPath)
	if err != nil {
		return nil, err
	}

	if len(rows) != len(cards) {
		return nil, domain.NewConfigurationError(indexPath,
			fmt.Sprintf("index has %d vectors but metadata has %d cards", len(rows), len(cards)))
	}

	s := &Store{
		cards:   cards,
		vectors: make([][]float32, len(rows)),
	}
	for i := range rows {
		if rows[i].Position != int64(i) {
			return nil, domain.NewConfigurationError(indexPath,
				fmt.Sprintf("row %d has position %d", i, rows[i].Position))
		}
		if i == 0 {
			s.dims = len(rows[i].Vector)
		} else if len(rows[i].Vector) != s.dims {
			return nil, domain.NewConfigurationError(indexPath,
				fmt.Sprintf("row %d has %d dimensions, expected %d", i, len(rows[i].Vector), s.dims))
		}
		s.vectors[i] = rows[i].Vector
	}
	return s, nil
}

// Write persists cards and their vectors as a card store in dir, creating it
// if needed. vectors[i] belongs to cards[i].
func Write(dir, indexFile, metaFile string, cards []card.Card, vectors [][]float32) error {
	if len(cards) != len(vectors) {
		return fmt.Errorf("write card store: %d cards but %d vectors", len(cards), len(vectors))
	}
	if indexFile == "" {
		indexFile = DefaultIndexFile
	}
	if metaFile == "" {
		metaFile = DefaultMetaFile
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create card store dir: %w", err)
	}

	rows := make([]vectorRow, len(vectors))
	dtos := make([]cardDTO, len(cards))
	for i := range cards {
		if cards[i].Position() != i {
			return fmt.Errorf("write card store: card %d has position %d", i, cards[i].Position())
		}
		rows[i] = vectorRow{Position: int64(i), Vector: vectors[i]}
		dtos[i] = fromDomain(&cards[i])
	}

	if err := parquet.WriteFile(filepath.Join(dir, indexFile), rows); err != nil {
		return fmt.Errorf("write vector index: %w", err)
	}

	data, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0o600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Len returns the number of cards.
func (s *Store) Len() int { return len(s.cards) }

// Dimensions returns the vector dimension, 0 for an empty store.
func (s *Store) Dimensions() int { return s.dims }

// Card returns the card at position i.
func (s *Store) Card(i int) (card.Card, bool) {
	if i < 0 || i >= len(s.cards) {
		return card.Card{}, false
	}
	return s.cards[i], true
}

// Search returns the k cards most similar to vec, highest score first and ties
// in store order. Vectors are unit length, so the dot product is the cosine.
// k larger than the store returns every card; k <= 0 or an empty store returns nil.
func (s *Store) Search(vec []float32, k int) ([]card.Scored, error) {
	if k <= 0 || len(s.cards) == 0 {
		return nil, nil
	}
	if len(vec) != s.dims {
		return nil, fmt.Errorf("query vector has %d dimensions, store has %d", len(vec), s.dims)
	}

	type hit struct {
		pos   int
		score float64
	}
	hits := make([]hit, len(s.vectors))
	for i, v := range s.vectors {
		hits[i] = hit{pos: i, score: dot(vec, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]card.Scored, k)
	for i := 0; i < k; i++ {
		out[i] = card.NewScored(s.cards[hits[i].pos], hits[i].score, i)
	}
	return out, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// ReadCards parses a metadata document into cards, positioned by array order.
// The indexer uses it to load cards that have no vectors yet.
func ReadCards(metaPath string) ([]card.Card, error) {
	data, err := os.ReadFile(filepath.Clean(metaPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewConfigurationError(metaPath, "card metadata not found")
		}
		return nil, domain.NewConfigurationError(metaPath, err.Error())
	}
	var dtos []cardDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, domain.NewConfigurationError(metaPath, fmt.Sprintf("parse metadata: %v", err))
	}
	cards := make([]card.Card, len(dtos))
	for i := range dtos {
		c, err := dtos[i].toDomain(i)
		if err != nil {
			return nil, domain.NewConfigurationError(metaPath, fmt.Sprintf("card %d: %v", i, err))
		}
		cards[i] = c
	}
	return cards, nil
}
