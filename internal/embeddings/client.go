// Package embeddings generates embedding vectors for profile text.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
type Client interface {
	// GetEmbedding generates an embedding vector for the given text.
	// The returned slice length equals the deployment's fixed dimension.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}
