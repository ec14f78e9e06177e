package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIClient implements the Client interface using OpenAI's embedding API.
// Outbound calls are paced by a shared rate limiter so bursts of refreshes
// don't trip the provider's quota.
type OpenAIClient struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	limiter    *rate.Limiter
}

// Ensure OpenAIClient implements Client interface
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI embedding client requesting vectors of
// the given dimension. requestsPerMinute caps outbound call rate; <= 0 means
// no pacing. Panics if apiKey is empty.
func NewOpenAIClient(apiKey string, model string, dimensions, requestsPerMinute int) *OpenAIClient {
	if apiKey == "" {
		panic("embeddings: OpenAI API key cannot be empty")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}

	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		limiter:    limiter,
	}
}

// GetEmbedding generates an embedding vector for the given text.
func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      c.model,
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimension: got %d, expected %d", len(embedding), c.dimensions)
	}

	return embedding, nil
}
