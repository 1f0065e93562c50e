package domain

import "context"

// EmbeddingResult is a computed text embedding plus token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder converts text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by collaborators that can verify their
// upstream availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
