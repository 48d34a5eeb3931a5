package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

const claudeDefaultMaxTokens = 2000

// ClaudeClient analyzes pages with the Anthropic Messages API.
type ClaudeClient struct {
	client      anthropic.Client
	apiKey      string
	model       string
	prompt      string
	maxTokens   int64
	temperature float32
}

// NewClaudeClient creates a client. An empty baseURL selects the public API.
// The SDK's own retries are off; Retrier owns the retry policy.
func NewClaudeClient(apiKey, baseURL, model, prompt string, maxTokens int, temperature float32) *ClaudeClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}
	return &ClaudeClient{
		client:      anthropic.NewClient(opts...),
		apiKey:      apiKey,
		model:       model,
		prompt:      prompt,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}
}

// Analyze sends the page image with its prompt and returns the reply.
func (c *ClaudeClient) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	img, err := encodeImage(req.ImagePath)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MediaType, img.Data),
				anthropic.NewTextBlock(BuildPrompt(c.prompt, req)),
			),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", scrubSecret(c.wrapError(err), c.apiKey)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("claude: response has no text content")
	}
	return b.String(), nil
}

// wrapError maps SDK errors carrying an HTTP status onto *StatusError.
func (c *ClaudeClient) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return &StatusError{Provider: "claude", StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
	}
	return fmt.Errorf("claude: %w", err)
}
