package cardstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// vectorRow is one row of the parquet vector index.
type vectorRow struct {
	Position int64     `parquet:"position"`
	Vector   []float32 `parquet:"vector"`
}

// cardDTO is one metadata entry. Besides the canonical fields it accepts the
// flat layout written by the extraction job, where attributes sit at top level
// next to kind and text.
type cardDTO struct {
	Kind       string            `json:"kind"`
	URI        string            `json:"uri,omitempty"`
	Label      string            `json:"label,omitempty"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// uriKeys are tried in order when a flat entry has no "uri".
var uriKeys = []string{"umbral_uri", "req_uri", "figura_uri"}

func (d *cardDTO) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) (string, error) {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("field %q: %w", key, err)
		}
		return s, nil
	}

	var err error
	if d.Kind, err = str("kind"); err != nil {
		return err
	}
	if d.URI, err = str("uri"); err != nil {
		return err
	}
	if d.Label, err = str("label"); err != nil {
		return err
	}
	if d.Text, err = str("text"); err != nil {
		return err
	}

	d.Attributes = map[string]string{}
	if v, ok := raw["attributes"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &d.Attributes); err != nil {
			return fmt.Errorf("field \"attributes\": %w", err)
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "kind", "uri", "label", "text", "attributes":
			continue
		}
		var s string
		if json.Unmarshal(raw[k], &s) != nil {
			continue
		}
		if _, exists := d.Attributes[k]; !exists {
			d.Attributes[k] = s
		}
	}

	if d.URI == "" {
		for _, k := range uriKeys {
			if d.Attributes[k] != "" {
				d.URI = d.Attributes[k]
				break
			}
		}
	}
	if d.Label == "" {
		d.Label = d.Attributes[card.AttrFigureName]
	}
	if len(d.Attributes) == 0 {
		d.Attributes = nil
	}
	return nil
}

func (d *cardDTO) toDomain(position int) (card.Card, error) {
	kind, err := card.ParseKind(d.Kind)
	if err != nil {
		return card.Card{}, err
	}
	return card.New(position, kind, d.URI, d.Label, d.Text, d.Attributes)
}

func fromDomain(c *card.Card) cardDTO {
	return cardDTO{
		Kind:       string(c.Kind()),
		URI:        c.URI(),
		Label:      c.Label(),
		Text:       c.Text(),
		Attributes: c.Attributes(),
	}
}
