package chi

import "github.com/OiherR/TFG-UNIBASQ/internal/domain"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse always carries a displayable answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// AskRequest is the body of POST /api/v1/ask. A nil MaxRetries uses the server default.
type AskRequest struct {
	Question   string `json:"question"`
	MaxRetries *int   `json:"max_retries,omitempty"`
}

// AskResponse mirrors domain.AskResult; absent fields are JSON null.
type AskResponse = domain.AskResult

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
