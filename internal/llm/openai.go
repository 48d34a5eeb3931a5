package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// OpenAIClient analyzes pages with the OpenAI chat completions API. It also
// serves any OpenAI-compatible endpoint such as OpenRouter via BaseURL.
type OpenAIClient struct {
	client      *openai.Client
	apiKey      string
	provider    string
	model       string
	prompt      string
	maxTokens   int
	temperature float32
}

// OpenAIOptions configures an OpenAIClient.
type OpenAIOptions struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// NewOpenAIClient creates a client for the OpenAI API or a compatible one.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}
	provider := opts.Provider
	if provider == "" {
		provider = "openai"
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		apiKey:      opts.APIKey,
		provider:    provider,
		model:       opts.Model,
		prompt:      opts.Prompt,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Analyze sends the page image with its prompt and returns the reply.
func (c *OpenAIClient) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	img, err := encodeImage(req.ImagePath)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: BuildPrompt(c.prompt, req),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", scrubSecret(c.wrapError(err), c.apiKey)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: response has no choices", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapError maps SDK errors carrying an HTTP status onto *StatusError.
func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: c.provider, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: c.provider, StatusCode: reqErr.HTTPStatusCode, Body: reqErr.HTTPStatus}
	}
	return fmt.Errorf("%s: %w", c.provider, err)
}
