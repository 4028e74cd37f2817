package domain

// VectorConfig holds the embedding space the card store was built with.
type VectorConfig struct {
	Model      string
	Dimensions int
}

// DefaultVectorConfig returns the sentence-embedding model used by the offline indexer.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions: 384,
	}
}
