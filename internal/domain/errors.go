package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals missing or inconsistent startup artifacts. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrPolicyViolation signals a candidate query rejected by the guardrail.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrRemoteExecution signals a failed query execution on the triple store.
	ErrRemoteExecution = errors.New("remote execution error")
	// ErrGeneration signals a language model call failure.
	ErrGeneration = errors.New("generation error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyQuestion signals a blank question.
	ErrEmptyQuestion = errors.New("empty question")
)

// ConfigurationError names the artifact that made the card store unusable.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Reason, e.Path)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError creates a configuration error for path.
func NewConfigurationError(path, reason string) error {
	return &ConfigurationError{Path: path, Reason: reason}
}

// PolicyViolationError carries the guardrail's rejection reason.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPolicyViolation.Error(), e.Reason)
}

func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// NewPolicyViolation creates a guardrail rejection.
func NewPolicyViolation(reason string) error {
	return &PolicyViolationError{Reason: reason}
}

// RemoteExecutionError is the triple store's diagnostic for one submitted query.
// Its text is fed back to the model on the next attempt.
type RemoteExecutionError struct {
	StatusCode int
	Body       string
	Query      string
}

func (e *RemoteExecutionError) Error() string {
	return fmt.Sprintf("sparql endpoint %d: %s\n\nQUERY:\n%s", e.StatusCode, e.Body, e.Query)
}

func (e *RemoteExecutionError) Unwrap() error { return ErrRemoteExecution }

// GenerationError wraps a failed language model call.
type GenerationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned status %d: %v", ErrGeneration.Error(), e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrGeneration.Error(), e.Provider, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }
