package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// GeminiClient analyzes pages with the Gemini API through the genai SDK,
// which sends the key in the x-goog-api-key header.
type GeminiClient struct {
	client      *genai.Client
	apiKey      string
	model       string
	prompt      string
	maxTokens   int32
	temperature float32
}

// NewGeminiClient creates a client. An empty baseURL selects the public API.
func NewGeminiClient(apiKey, baseURL, model, prompt string, maxTokens int, temperature float32) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, domain.ConfigError("cannot create gemini client", scrubSecret(err, apiKey))
	}
	return &GeminiClient{
		client:      client,
		apiKey:      apiKey,
		model:       model,
		prompt:      prompt,
		maxTokens:   int32(maxTokens),
		temperature: temperature,
	}, nil
}

// Analyze sends the page image with its prompt and returns the reply.
func (c *GeminiClient) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	mediaType, data, err := readImage(req.ImagePath)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(BuildPrompt(c.prompt, req)),
			genai.NewPartFromBytes(data, mediaType),
		}, genai.RoleUser),
	}
	gc := &genai.GenerateContentConfig{}
	if c.maxTokens > 0 {
		gc.MaxOutputTokens = c.maxTokens
	}
	if c.temperature > 0 {
		gc.Temperature = genai.Ptr(c.temperature)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		return "", scrubSecret(wrapGeminiError(err), c.apiKey)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: response has no text content")
	}
	return text, nil
}

// wrapGeminiError maps SDK errors carrying an HTTP status onto *StatusError.
func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code != 0 {
		return &StatusError{Provider: "gemini", StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}
