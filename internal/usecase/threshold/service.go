// Package threshold answers minimum and maximum score questions straight from
// threshold cards, without synthesizing a query.
package threshold

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
	"github.com/OiherR/TFG-UNIBASQ/internal/sparql"
)

// DefaultK is how many cards are retrieved before filtering.
const DefaultK = 25

const (
	minKind         = "min"
	maxKind         = "max"
	apartadoMinimum = "apartado_min"
	totalArea       = "total"
)

var areaDisplay = map[string]string{
	"docencia":      "docencia",
	"investigacion": "investigación",
	"formacion":     "formación",
	"gestion":       "gestión",
	"total":         "total",
}

// Service is the threshold shortcut.
type Service struct {
	retriever Retriever
	k         int
}

// New creates the shortcut. k <= 0 uses DefaultK.
func New(r Retriever, k int) *Service {
	if k <= 0 {
		k = DefaultK
	}
	return &Service{retriever: r, k: k}
}

// Answer returns a templated answer and true when a threshold card settles the
// question. Declining is ("", false, nil). Retrieval errors are returned so
// the caller can log them before falling back to synthesis.
func (s *Service) Answer(ctx context.Context, question string) (string, bool, error) {
	if !sparql.MentionsThreshold(question) {
		return "", false, nil
	}

	cards, err := s.retriever.Search(ctx, question, s.k)
	if err != nil {
		return "", false, fmt.Errorf("retrieve threshold cards: %w", err)
	}

	c, ok := Match(question, cards)
	if !ok {
		return "", false, nil
	}
	return Render(&c.Card), true, nil
}

// constraints are the card requirements inferred from a question.
type constraints struct {
	figureTerms []string
	area        string
	minmax      string
	apartado    bool
}

func inferConstraints(question string) constraints {
	c := constraints{
		figureTerms: sparql.MentionedFigureTerms(question),
		area:        sparql.MentionedArea(question),
	}
	wantMin, wantMax := sparql.MentionsMinimum(question), sparql.MentionsMaximum(question)
	switch {
	case wantMin && !wantMax:
		c.minmax = minKind
	case wantMax && !wantMin:
		c.minmax = maxKind
	}
	c.apartado = c.minmax == minKind && c.area != "" && c.area != totalArea
	return c
}

func (cs constraints) accepts(c *card.Card) bool {
	if c.Kind() != card.Threshold {
		return false
	}
	if len(cs.figureTerms) > 0 {
		figure := sparql.Normalize(figureName(c))
		for _, term := range cs.figureTerms {
			if !strings.Contains(figure, term) {
				return false
			}
		}
	}
	if cs.area != "" && sparql.Normalize(c.Attr(card.AttrArea)) != cs.area {
		return false
	}
	if cs.minmax != "" && strings.ToLower(strings.TrimSpace(c.Attr(card.AttrMinMax))) != cs.minmax {
		return false
	}
	if cs.apartado && !strings.Contains(strings.ToLower(c.Attr(card.AttrThresholdType)), apartadoMinimum) {
		return false
	}
	return strings.TrimSpace(c.Attr(card.AttrValue)) != ""
}

// Match returns the first card, in retrieval order, that satisfies every
// constraint inferred from question and carries a value.
func Match(question string, cards []card.Scored) (card.Scored, bool) {
	cs := inferConstraints(question)
	for i := range cards {
		if cs.accepts(&cards[i].Card) {
			return cards[i], true
		}
	}
	return card.Scored{}, false
}

// Render formats a threshold card as a one-sentence answer.
func Render(c *card.Card) string {
	var qualifier string
	switch strings.ToLower(strings.TrimSpace(c.Attr(card.AttrMinMax))) {
	case minKind:
		qualifier = "mínima"
	case maxKind:
		qualifier = "máxima"
	default:
		qualifier = "requerida"
	}

	var b strings.Builder
	b.WriteString("La puntuación ")
	b.WriteString(qualifier)
	if area := strings.TrimSpace(c.Attr(card.AttrArea)); area != "" {
		if shown, ok := areaDisplay[sparql.Normalize(area)]; ok {
			area = shown
		}
		b.WriteString(" en ")
		b.WriteString(area)
	}
	if figure := figureName(c); figure != "" {
		b.WriteString(" para ")
		b.WriteString(figure)
	}
	b.WriteString(" es ")
	b.WriteString(formatValue(c.Attr(card.AttrValue)))
	if unit := strings.TrimSpace(c.Attr(card.AttrUnit)); unit != "" {
		b.WriteString(" ")
		b.WriteString(unit)
	}
	b.WriteString(".")
	return b.String()
}

func figureName(c *card.Card) string {
	if name := strings.TrimSpace(c.Attr(card.AttrFigureName)); name != "" {
		return name
	}
	return strings.TrimSpace(c.Label())
}

// formatValue prints numbers in shortest form ("7.0" -> "7") and leaves other text as is.
func formatValue(v string) string {
	v = strings.TrimSpace(v)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
