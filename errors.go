package graphrag

import "github.com/OiherR/TFG-UNIBASQ/internal/domain"

// Sentinel errors. Match with errors.Is.
var (
	ErrConfiguration          = domain.ErrConfiguration
	ErrPolicyViolation        = domain.ErrPolicyViolation
	ErrRemoteExecution        = domain.ErrRemoteExecution
	ErrGeneration             = domain.ErrGeneration
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmptyQuestion          = domain.ErrEmptyQuestion
)

// ConfigurationError names the artifact that made the card store unusable.
type ConfigurationError = domain.ConfigurationError
