package sparql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
)

// MaxPreviewRows bounds the result rows shown to the model when phrasing an answer.
const MaxPreviewRows = 10

const queryRules = `Eres un asistente experto en SPARQL y Apache Jena Fuseki.

REGLAS ESTRICTAS:
- Devuelve SOLO la consulta SPARQL (sin texto adicional).
- No uses ` + "```" + ` ni explicaciones.
- Usa únicamente URIs que aparezcan en el CONTEXTO.
- No inventes prefijos ni URIs.
- Usa SELECT (nunca ASK, CONSTRUCT, DESCRIBE).
- Prohibido usar GRAPH, FROM, FROM NAMED o SERVICE.
- Usa SIEMPRE el grafo por defecto.

EJEMPLO (IMPORTANTE):
Pregunta: ¿Cuántos triples hay en el grafo?
SPARQL:
` + SafeCountQuery + `
`

// BuildQueryPrompt assembles the generation prompt: fixed rules, the question and
// every context card numbered from 1. A non-empty lastErr appends the previous
// failure and a correction instruction.
func BuildQueryPrompt(question string, cards []card.Scored, lastErr string) string {
	var b strings.Builder
	b.WriteString(queryRules)
	b.WriteString("\nPREGUNTA DEL USUARIO:\n")
	b.WriteString(question)
	b.WriteString("\n\nCONTEXTO DEL KNOWLEDGE GRAPH:\n")
	for i := range cards {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d) %s", i+1, cards[i].Text())
	}
	b.WriteString("\n\nGenera ahora SOLO la consulta SPARQL:\n")

	if lastErr != "" {
		b.WriteString("\nLa consulta anterior falló con este error:\n")
		b.WriteString(lastErr)
		b.WriteString("\n\nCorrige la consulta SPARQL cumpliendo las reglas.\n")
	}
	return b.String()
}

// BuildAnswerPrompt asks the model to phrase the executed query's result,
// showing at most MaxPreviewRows rows.
func BuildAnswerPrompt(question, query string, res domain.ExecutionResult) string {
	preview := res.Rows
	if len(preview) > MaxPreviewRows {
		preview = preview[:MaxPreviewRows]
	}
	if preview == nil {
		preview = []map[string]string{}
	}
	rows, err := json.Marshal(preview)
	if err != nil {
		rows = []byte("[]")
	}

	return fmt.Sprintf(`Responde en español de forma clara y concisa.

Pregunta:
%s

Consulta SPARQL ejecutada:
%s

Resultados (primeras filas):
%s

Si no hay resultados, indícalo claramente.
`, question, query, rows)
}
