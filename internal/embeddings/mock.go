package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/pawplates/engine/pkg/vector"
)

// MockClient implements the Client interface for testing purposes.
// It generates deterministic embeddings based on the input text hash.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a mock embedding client producing vectors of the
// given dimension.
func NewMockClient(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// GetEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	return c.generateDeterministicEmbedding(text), nil
}

// generateDeterministicEmbedding creates a normalized embedding vector from text hash.
func (c *MockClient) generateDeterministicEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		// Use hash bytes cyclically, mapped to [-1, 1].
		byteIdx := i % len(hash)
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	vector.NormalizeL2(embedding)

	return embedding
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
