package llm

import (
	"context"
	"strings"
)

// MockClient implements the Client interface for testing purposes.
// It echoes a canned response and records the prompts it received.
type MockClient struct {
	Response string
	Err      error
	Prompts  []string
}

var _ Client = (*MockClient)(nil)

// Generate records prompt and returns the configured response or error.
func (c *MockClient) Generate(_ context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	c.Prompts = append(c.Prompts, prompt)

	if c.Err != nil {
		return "", c.Err
	}

	if c.Response == "" {
		return "mock recommendation", nil
	}

	return c.Response, nil
}
