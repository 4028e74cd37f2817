package sparql

import (
	"regexp"
	"strings"
)

var (
	fenceRe      = regexp.MustCompile("(?is)```(?:sparql)?\\s*(.*?)```")
	assignmentRe = regexp.MustCompile(`^\s*[A-Za-z_][A-Za-z0-9_]*\s*=\s*`)
	labelRe      = regexp.MustCompile(`(?i)^\s*SPARQL\s*:\s*`)
)

// Extract recovers the candidate query from raw model output. It never fails:
// in the worst case the trimmed input is returned.
//
// One pass takes the first fenced block (or the whole text), drops a leading
// "identifier =" assignment, unwraps a single pair of matching quotes and drops
// a "SPARQL:" label. Passes repeat until nothing changes, which makes Extract
// idempotent. Every pass that changes the text shortens it, so the loop ends.
func Extract(raw string) string {
	cur := strings.TrimSpace(raw)
	for {
		next := extractOnce(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func extractOnce(text string) string {
	s := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	s = strings.TrimSpace(assignmentRe.ReplaceAllString(s, ""))

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return strings.TrimSpace(labelRe.ReplaceAllString(s, ""))
}
