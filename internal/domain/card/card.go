package card

import (
	"fmt"
	"strings"
)

// Kind is the fact category a card describes.
type Kind string

// Card kinds.
const (
	Class       Kind = "class"
	Property    Kind = "property"
	Requirement Kind = "requirement"
	Threshold   Kind = "threshold"
)

// kindAliases maps the labels written by the offline extraction job.
var kindAliases = map[string]Kind{
	"class":       Class,
	"clase":       Class,
	"property":    Property,
	"propiedad":   Property,
	"requirement": Requirement,
	"requisito":   Requirement,
	"req":         Requirement,
	"threshold":   Threshold,
	"umbral":      Threshold,
}

// ParseKind resolves a kind label, accepting the extraction job's Spanish aliases.
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown card kind %q", s)
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Class || k == Property || k == Requirement || k == Threshold
}

// Attribute keys carried by requirement and threshold cards.
const (
	AttrFigureURI     = "figura_uri"
	AttrFigureName    = "figura_nombre"
	AttrArea          = "area"
	AttrMinMax        = "minmax"
	AttrThresholdType = "umbral_tipo"
	AttrValue         = "valor"
	AttrUnit          = "unidad"
	AttrDescription   = "req_desc"
)

// Card is one schema or content fact of the knowledge graph (immutable value object).
// Its identity is its position in the card store.
type Card struct {
	position   int
	kind       Kind
	uri        string
	label      string
	text       string
	attributes map[string]string
}

// New validates and creates a Card. Text is the embedding source and is required.
func New(position int, kind Kind, uri, label, text string, attributes map[string]string) (Card, error) {
	if position < 0 {
		return Card{}, fmt.Errorf("card position must be >= 0, got %d", position)
	}
	if !kind.IsValid() {
		return Card{}, fmt.Errorf("invalid card kind %q", kind)
	}
	if strings.TrimSpace(text) == "" {
		return Card{}, fmt.Errorf("card %d: text is required", position)
	}
	return Card{
		position:   position,
		kind:       kind,
		uri:        uri,
		label:      label,
		text:       text,
		attributes: cloneStringMap(attributes),
	}, nil
}

// Position returns the card's index in the store.
func (c *Card) Position() int { return c.position }

// Kind returns the card kind.
func (c *Card) Kind() Kind { return c.kind }

// URI returns the graph identifier the card describes.
func (c *Card) URI() string { return c.uri }

// Label returns the human label.
func (c *Card) Label() string { return c.label }

// Text returns the embedding source text, also used as prompt context.
func (c *Card) Text() string { return c.text }

// Attr returns a single attribute, empty when absent.
func (c *Card) Attr(key string) string { return c.attributes[key] }

// Attributes returns a copy of the attribute map.
func (c *Card) Attributes() map[string]string { return cloneStringMap(c.attributes) }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
