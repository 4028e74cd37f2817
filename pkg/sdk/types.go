package sdk

import "fmt"

// AskResult is the server's answer to one question. On success Answer is set;
// otherwise Error carries the last diagnostic. Query is the last SPARQL query
// tried and is nil when the answer came straight from a threshold card.
type AskResult struct {
	Query  *string `json:"query"`
	Answer *string `json:"answer"`
	Error  *string `json:"error"`
}

// OK reports whether the question was answered.
func (r AskResult) OK() bool { return r.Answer != nil }

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Healthy reports whether every component check passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("graphrag api %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("graphrag api %d: %s", e.StatusCode, e.Message)
}

type askRequest struct {
	Question   string `json:"question"`
	MaxRetries *int   `json:"max_retries,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
