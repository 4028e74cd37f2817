package domain

// ExecutionResult is a tabular SELECT/ASK result from the triple store.
// Vars keeps the projection order; each row maps variable name to its lexical value.
type ExecutionResult struct {
	Vars []string
	Rows []map[string]string
}

// AskResult is the outcome of one question. On a terminal outcome exactly one of
// Answer and Error is set. A direct threshold answer leaves Query nil.
type AskResult struct {
	Query  *string `json:"query"`
	Answer *string `json:"answer"`
	Error  *string `json:"error"`
}

// Answered builds a successful result. An empty query means no query was synthesized.
func Answered(query, answer string) AskResult {
	r := AskResult{Answer: &answer}
	if query != "" {
		r.Query = &query
	}
	return r
}

// Failed builds a terminal failure carrying the last diagnostic.
func Failed(query, errText string) AskResult {
	r := AskResult{Error: &errText}
	if query != "" {
		r.Query = &query
	}
	return r
}

// OK reports whether an answer was produced.
func (r AskResult) OK() bool { return r.Answer != nil }
