package card

// Scored is a card returned by similarity search.
type Scored struct {
	Card
	score float64
	rank  int
}

// NewScored wraps a card with its cosine similarity and zero-based rank.
func NewScored(c Card, score float64, rank int) Scored {
	return Scored{Card: c, score: score, rank: rank}
}

// Score returns the cosine similarity in [-1, 1].
func (s *Scored) Score() float64 { return s.score }

// Rank returns the zero-based position in the result list.
func (s *Scored) Rank() int { return s.rank }
