// Package llm provides the text-generation capability used for recipe recommendations.
package llm

import "context"

// Client defines the interface for text generation.
type Client interface {
	// Generate produces a textual completion for the given prompt.
	// Implementations may time out or fail; callers wrap failures as
	// external-service errors and never retry here.
	Generate(ctx context.Context, prompt string) (string, error)
}
