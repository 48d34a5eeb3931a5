// Package llm sends rendered pages to vision models and retries transient
// failures.
package llm

import (
	"fmt"

	"github.com/langlang056/pdf-for-college/internal/config"
	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

// NewProvider builds the bare provider client selected by cfg.
func NewProvider(cfg *config.Config) (domain.Analyzer, error) {
	settings := cfg.ProviderSettings()
	llmCfg := cfg.LLM

	switch llmCfg.Provider {
	case config.ProviderOpenAI, config.ProviderOpenRouter:
		return NewOpenAIClient(OpenAIOptions{
			Provider:    llmCfg.Provider,
			APIKey:      settings.Key,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Prompt:      llmCfg.Prompt,
			MaxTokens:   llmCfg.MaxTokens,
			Temperature: llmCfg.Temperature,
		}), nil
	case config.ProviderClaude:
		return NewClaudeClient(settings.Key, settings.BaseURL, settings.Model, llmCfg.Prompt, llmCfg.MaxTokens, llmCfg.Temperature), nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(settings.Key, settings.BaseURL, settings.Model, llmCfg.Prompt, llmCfg.MaxTokens, llmCfg.Temperature)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unsupported llm provider: %q", llmCfg.Provider), nil)
	}
}

// NewAnalyzer builds the selected provider wrapped in the retry policy.
func NewAnalyzer(cfg *config.Config, logger *observability.Logger) (*Retrier, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return NewRetrier(provider, RetryConfig{
		MaxAttempts: cfg.LLM.MaxRetries,
		BackoffUnit: cfg.LLM.BackoffUnit,
		Timeout:     cfg.LLM.Timeout,
	}, logger.WithProvider(cfg.LLM.Provider)), nil
}
