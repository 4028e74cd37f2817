package sparql

import (
	"regexp"
	"strings"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
)

// SafeCountQuery is substituted for any candidate answering a triple-count question
// that is malformed or uses a disallowed construct.
const SafeCountQuery = "SELECT (COUNT(*) AS ?n) WHERE { ?s ?p ?o }"

var (
	// opaqueRe matches IRIs, string literals, comments, variables and prefixed
	// names; keywords inside them are ignored.
	opaqueRe = regexp.MustCompile(`<[^<>"{}|^` + "`" + `\\\s]*>|"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|#[^\n]*` +
		`|[?$][\pL\pN_]+|(?:[\pL_][\pL\pN_.-]*)?:[\pL\pN_][\pL\pN_.-]*`)
	prologRe = regexp.MustCompile(`(?i)^\s*(?:(?:PREFIX\s+[^\s:]*:|BASE)\s*<>\s*)*`)
	formRe   = regexp.MustCompile(`^\s*([A-Za-z]+)`)
	countRe  = regexp.MustCompile(`(?i)\bCOUNT\s*\(`)

	forbiddenConstructs = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"GRAPH", regexp.MustCompile(`(?i)\bGRAPH\b`)},
		{"FROM", regexp.MustCompile(`(?i)\bFROM\b`)},
		{"SERVICE", regexp.MustCompile(`(?i)\bSERVICE\b`)},
	}

	readForms = map[string]bool{"SELECT": true, "ASK": true}
)

// Sanitize enforces the read-only, default-graph policy on a candidate query.
// It inspects text only and never executes anything.
//
// Triple-count questions always get a usable query: SafeCountQuery replaces a
// candidate that breaks the policy or lacks a COUNT aggregate. Any other
// question with a disallowed construct fails with a PolicyViolationError.
func Sanitize(question, candidate string) (string, error) {
	q := strings.TrimSpace(assignmentRe.ReplaceAllString(strings.TrimSpace(candidate), ""))
	tripleCount := IsTripleCount(question)

	masked := mask(q)
	if reason := disallowedConstruct(masked); reason != "" {
		if tripleCount {
			return SafeCountQuery, nil
		}
		return "", domain.NewPolicyViolation(reason)
	}

	if tripleCount && !countRe.MatchString(masked) {
		return SafeCountQuery, nil
	}
	return q, nil
}

// mask blanks out every token whose text is not query syntax, so keyword
// checks only see keywords.
func mask(query string) string {
	return opaqueRe.ReplaceAllStringFunc(query, func(m string) string {
		switch m[0] {
		case '<':
			return "<>"
		case '#':
			return ""
		case '"', '\'':
			return `""`
		case '?', '$':
			return "?v"
		default:
			return "p:x"
		}
	})
}

// disallowedConstruct returns a diagnostic for the first policy breach in a
// masked query, or "".
func disallowedConstruct(masked string) string {
	for _, fc := range forbiddenConstructs {
		if fc.re.MatchString(masked) {
			return "query uses " + fc.name + "; named graphs, FROM clauses and SERVICE are forbidden, use the default graph"
		}
	}

	body := prologRe.ReplaceAllString(masked, "")
	m := formRe.FindStringSubmatch(body)
	if m == nil {
		return "query is empty or has no query form; only SELECT or ASK are allowed"
	}
	if form := strings.ToUpper(m[1]); !readForms[form] {
		return "query form " + form + " is not allowed; only SELECT or ASK are allowed"
	}
	return ""
}
