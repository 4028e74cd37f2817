package sparql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "puntuacion minima en investigacion", Normalize("Puntuación MÍNIMA en Investigación"))
	assert.Equal(t, "gestion", Normalize("gestión"))
}

func TestIsTripleCount(t *testing.T) {
	assert.True(t, IsTripleCount("¿Cuántos triples hay en el grafo?"))
	assert.True(t, IsTripleCount("cuantos triples"))
	assert.True(t, IsTripleCount("How many triples does the store hold?"))
	assert.False(t, IsTripleCount("¿Cuántas figuras hay?"))
	assert.False(t, IsTripleCount("lista los triples"))
}

func TestThresholdVocabulary(t *testing.T) {
	q := "¿Cuál es la puntuación mínima en investigación para el Pleno?"
	assert.True(t, MentionsThreshold(q))
	assert.True(t, MentionsMinimum(q))
	assert.False(t, MentionsMaximum(q))
	assert.Equal(t, "investigacion", MentionedArea(q))
	assert.Equal(t, []string{"pleno"}, MentionedFigureTerms(q))

	assert.False(t, MentionsThreshold("¿Qué requisitos tiene la figura?"))
	assert.Equal(t, "", MentionedArea("¿Qué requisitos tiene la figura?"))
	assert.True(t, MentionsMaximum("puntuación máxima en gestión"))
}

func TestMentionedFigureTerms_Multiple(t *testing.T) {
	got := MentionedFigureTerms("Nota mínima de Profesor Ayudante Doctor en docencia")
	if diff := cmp.Diff([]string{"ayudante", "doctor"}, got); diff != "" {
		t.Errorf("figure terms mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "docencia", MentionedArea("Nota mínima de Profesor Ayudante Doctor en docencia"))
}
