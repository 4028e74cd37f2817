package sparql

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Trigger term lists. Terms are matched as substrings of the folded question,
// so stems ("minim", "tripl") cover gender and number variants.
var (
	countTerms     = []string{"cuant", "how many", "numero de", "count"}
	tripleTerms    = []string{"tripl"}
	thresholdTerms = []string{
		"puntuacion", "puntos", "punto", "nota", "minim", "maxim", "umbral",
		"score", "points", "minimum", "maximum",
	}
	minimumTerms = []string{"minim"}
	maximumTerms = []string{"maxim"}
	figureTerms  = []string{
		"pleno", "agregado", "adjunto", "ayudante", "colaborador", "doctor",
		"investigador", "titular", "catedratico", "laboral", "permanente",
	}
)

// areaTerms maps question vocabulary to the area attribute written on threshold cards.
var areaTerms = []struct {
	term string
	area string
}{
	{"docencia", "docencia"},
	{"docente", "docencia"},
	{"investigacion", "investigacion"},
	{"formacion", "formacion"},
	{"gestion", "gestion"},
	{"total", "total"},
}

// Normalize lower-cases s and strips diacritics ("Investigación" -> "investigacion").
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// IsTripleCount reports whether the question asks for the total number of triples.
func IsTripleCount(question string) bool {
	q := Normalize(question)
	return containsAny(q, countTerms) && containsAny(q, tripleTerms)
}

// MentionsThreshold reports whether the question uses score or minimum vocabulary.
func MentionsThreshold(question string) bool {
	return containsAny(Normalize(question), thresholdTerms)
}

// MentionsMinimum reports whether the question asks for a minimum.
func MentionsMinimum(question string) bool {
	return containsAny(Normalize(question), minimumTerms)
}

// MentionsMaximum reports whether the question asks for a maximum.
func MentionsMaximum(question string) bool {
	return containsAny(Normalize(question), maximumTerms)
}

// MentionedArea returns the evaluation area named in the question, or "".
func MentionedArea(question string) string {
	q := Normalize(question)
	for _, a := range areaTerms {
		if strings.Contains(q, a.term) {
			return a.area
		}
	}
	return ""
}

// MentionedFigureTerms returns every figure term present in the question, in list order.
func MentionedFigureTerms(question string) []string {
	q := Normalize(question)
	var out []string
	for _, t := range figureTerms {
		if strings.Contains(q, t) {
			out = append(out, t)
		}
	}
	return out
}
