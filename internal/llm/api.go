package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"skillforge/internal/logging"
)

// APIClient talks to the Gemini API directly. It is selected when an API
// key is configured, avoiding the subprocess round-trip of the CLI client.
type APIClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewAPIClient creates a direct Gemini API client.
func NewAPIClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*APIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &APIClient{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Complete sends the prompt as a single user turn and returns the
// concatenated text of the first candidate.
func (c *APIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	logging.APIDebug("[API] generating model=%s prompt_len=%d", c.model, len(prompt))

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		logging.APIError("[API] generation failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("gemini API generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini API returned an empty response")
	}

	logging.API("[API] completed in %v response_len=%d", time.Since(start), len(text))
	return text, nil
}

// Name identifies the backend for logging.
func (c *APIClient) Name() string {
	return fmt.Sprintf("api:%s", c.model)
}
