package sparql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

func scoredCards(t *testing.T, texts ...string) []card.Scored {
	t.Helper()
	out := make([]card.Scored, len(texts))
	for i, text := range texts {
		c, err := card.New(i, card.Class, fmt.Sprintf("http://x/%d", i), "", text, nil)
		require.NoError(t, err)
		out[i] = card.NewScored(c, 1, i)
	}
	return out
}

func TestBuildQueryPrompt_Policy(t *testing.T) {
	p := BuildQueryPrompt("¿Qué figuras hay?", nil, "")

	for _, rule := range []string{
		"Usa únicamente URIs que aparezcan en el CONTEXTO.",
		"No inventes prefijos ni URIs.",
		"Usa SELECT (nunca ASK, CONSTRUCT, DESCRIBE).",
		"Prohibido usar GRAPH, FROM, FROM NAMED o SERVICE.",
		"Usa SIEMPRE el grafo por defecto.",
		SafeCountQuery,
	} {
		assert.Contains(t, p, rule)
	}
	assert.Contains(t, p, "PREGUNTA DEL USUARIO:\n¿Qué figuras hay?")
	assert.NotContains(t, p, "La consulta anterior falló")
}

func TestBuildQueryPrompt_NumbersEveryCard(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("CLASE\nuri: http://x/C%d", i)
	}
	p := BuildQueryPrompt("q", scoredCards(t, texts...), "")

	assert.Contains(t, p, "1) CLASE\nuri: http://x/C0\n\n2) CLASE")
	assert.Contains(t, p, "12) CLASE\nuri: http://x/C11")
}

func TestBuildQueryPrompt_RetryFeedback(t *testing.T) {
	p := BuildQueryPrompt("q", scoredCards(t, "CLASE A"), "sparql endpoint 400: Lexical error")

	assert.Contains(t, p, "La consulta anterior falló con este error:\nsparql endpoint 400: Lexical error")
	assert.True(t, strings.HasSuffix(p, "Corrige la consulta SPARQL cumpliendo las reglas.\n"))
}

func TestBuildAnswerPrompt_PreviewBounded(t *testing.T) {
	rows := make([]map[string]string, 15)
	for i := range rows {
		rows[i] = map[string]string{"n": fmt.Sprintf("v%02d", i)}
	}
	p := BuildAnswerPrompt("q", "SELECT ?n WHERE { ?s ?p ?n }", domain.ExecutionResult{Vars: []string{"n"}, Rows: rows})

	assert.Contains(t, p, `"v09"`)
	assert.NotContains(t, p, `"v10"`)
	assert.Contains(t, p, "Si no hay resultados, indícalo claramente.")
}

func TestBuildAnswerPrompt_NoRows(t *testing.T) {
	p := BuildAnswerPrompt("q", "SELECT ?n WHERE { ?s ?p ?n }", domain.ExecutionResult{})
	assert.Contains(t, p, "Resultados (primeras filas):\n[]\n")
}
