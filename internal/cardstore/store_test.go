package cardstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

func mustCard(t *testing.T, pos int, kind card.Kind, text string, attrs map[string]string) card.Card {
	t.Helper()
	c, err := card.New(pos, kind, "http://example.org/unibasq/ontology#c", "", text, attrs)
	require.NoError(t, err)
	return c
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cards := []card.Card{
		mustCard(t, 0, card.Class, "CLASE Figura", nil),
		mustCard(t, 1, card.Threshold, "UMBRAL pleno investigacion", map[string]string{
			card.AttrFigureName: "Pleno", card.AttrArea: "investigacion", card.AttrValue: "7",
		}),
		mustCard(t, 2, card.Property, "PROPIEDAD nombre", nil),
		mustCard(t, 3, card.Requirement, "REQUISITO doctorado", nil),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
	}
	require.NoError(t, Write(dir, "", "", cards, vectors))
	return dir
}

func TestLoad_RoundTrip(t *testing.T) {
	s, err := Load(writeFixture(t), "", "")
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 3, s.Dimensions())

	c, ok := s.Card(1)
	require.True(t, ok)
	assert.Equal(t, card.Threshold, c.Kind())
	assert.Equal(t, "Pleno", c.Attr(card.AttrFigureName))
	assert.Equal(t, "UMBRAL pleno investigacion", c.Text())

	_, ok = s.Card(4)
	assert.False(t, ok)
}

func TestSearch_OrderAndTies(t *testing.T) {
	s, err := Load(writeFixture(t), "", "")
	require.NoError(t, err)

	got, err := s.Search([]float32{0, 1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// positions 1 and 2 tie at 1.0 and keep store order
	assert.Equal(t, 1, got[0].Position())
	assert.Equal(t, 2, got[1].Position())
	assert.Equal(t, 3, got[2].Position())
	assert.InDelta(t, 1.0, got[0].Score(), 1e-6)
	assert.InDelta(t, 0.8, got[2].Score(), 1e-6)
	for i, sc := range got {
		assert.Equal(t, i, sc.Rank())
	}
}

func TestSearch_KBounds(t *testing.T) {
	s, err := Load(writeFixture(t), "", "")
	require.NoError(t, err)

	all, err := s.Search([]float32{1, 0, 0}, 50)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score(), all[i].Score())
	}

	none, err := s.Search([]float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.Search([]float32{1, 0}, 2)
	assert.Error(t, err)
}

func TestSearch_EmptyStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, "", "", nil, nil))

	s, err := Load(dir, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	got, err := s.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := writeFixture(t)

	for _, name := range []string{DefaultIndexFile, DefaultMetaFile} {
		t.Run(name, func(t *testing.T) {
			d := t.TempDir()
			other := DefaultMetaFile
			if name == DefaultMetaFile {
				other = DefaultIndexFile
			}
			data, err := os.ReadFile(filepath.Join(dir, other))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(d, other), data, 0o600))

			_, err = Load(d, "", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, filepath.Join(d, name), cfgErr.Path)
		})
	}
}

func TestLoad_LengthMismatch(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMetaFile),
		[]byte(`[{"kind":"clase","text":"CLASE Figura"}]`), 0o600))

	_, err := Load(dir, "", "")
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "4 vectors")
}

func TestLoad_DimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	rows := []vectorRow{
		{Position: 0, Vector: []float32{1, 0}},
		{Position: 1, Vector: []float32{1, 0, 0}},
	}
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, DefaultIndexFile), rows))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMetaFile),
		[]byte(`[{"kind":"class","text":"a"},{"kind":"class","text":"b"}]`), 0o600))

	_, err := Load(dir, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "dimensions")
}

func TestLoad_FlatExtractionLayout(t *testing.T) {
	dir := t.TempDir()
	rows := []vectorRow{{Position: 0, Vector: []float32{0, 1}}}
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, DefaultIndexFile), rows))
	meta := `[{
		"kind": "umbral",
		"figura_uri": "http://example.org/unibasq/ontology#Pleno",
		"figura_nombre": "Pleno de la Comisión",
		"umbral_uri": "http://example.org/unibasq/ontology#U_investigacion_min_1",
		"umbral_tipo": "apartado_min",
		"area": "investigacion",
		"minmax": "min",
		"valor": "7",
		"unidad": "puntos",
		"text": "TIPO_CARD: umbral"
	}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMetaFile), []byte(meta), 0o600))

	s, err := Load(dir, "", "")
	require.NoError(t, err)

	c, ok := s.Card(0)
	require.True(t, ok)
	assert.Equal(t, card.Threshold, c.Kind())
	assert.Equal(t, "http://example.org/unibasq/ontology#U_investigacion_min_1", c.URI())
	assert.Equal(t, "Pleno de la Comisión", c.Label())
	assert.Equal(t, "min", c.Attr(card.AttrMinMax))
	assert.Equal(t, "apartado_min", c.Attr(card.AttrThresholdType))
	assert.Equal(t, "puntos", c.Attr(card.AttrUnit))
}

func TestLoad_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	rows := []vectorRow{{Position: 0, Vector: []float32{1}}}
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, DefaultIndexFile), rows))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMetaFile),
		[]byte(`[{"kind":"individuo","text":"x"}]`), 0o600))

	_, err := Load(dir, "", "")
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestWrite_Misaligned(t *testing.T) {
	err := Write(t.TempDir(), "", "", []card.Card{mustCard(t, 0, card.Class, "x", nil)}, nil)
	assert.Error(t, err)
}

func TestReadCards(t *testing.T) {
	dir := writeFixture(t)

	cards, err := ReadCards(filepath.Join(dir, DefaultMetaFile))
	require.NoError(t, err)
	require.Len(t, cards, 4)
	assert.Equal(t, 1, cards[1].Position())
	assert.Equal(t, "7", cards[1].Attr(card.AttrValue))

	_, err = ReadCards(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
