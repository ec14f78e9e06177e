package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
	ErrEmptyPrompt = errors.New("llm: prompt is empty")
	// ErrNoChoicesInResponse is returned when the API response contains no completion.
	ErrNoChoicesInResponse = errors.New("llm: no choices in response")
)

const systemPrompt = "You are a canine nutrition assistant for a dog food recipe app. " +
	"Recommend recipes that are safe and appropriate for the dog described."

// OpenAIClient calls the OpenAI chat completions API via the official SDK.
// Outbound calls are paced by a shared rate limiter.
type OpenAIClient struct {
	sdk     openaisdk.Client
	model   openaisdk.ChatModel
	limiter *rate.Limiter
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates an OpenAI text-generation client using the official
// SDK. requestsPerMinute caps outbound call rate; <= 0 means no pacing.
func NewOpenAIClient(apiKey, model string, requestsPerMinute int) *OpenAIClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}

	return &OpenAIClient{
		sdk:     openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:   openaisdk.ChatModel(model),
		limiter: limiter,
	}
}

// Generate returns the completion text for the given prompt. Exactly one API
// call is made per invocation; the response text is returned unchanged.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limiter: %w", err)
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
