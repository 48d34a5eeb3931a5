// Package config provides unified configuration loading for the explainer.
// Supports YAML files, .env files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by llm.provider.
const (
	ProviderOpenAI     = "openai"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Cache drivers accepted by cache.driver.
const (
	CacheDriverFile     = "file"
	CacheDriverSQLite   = "sqlite"
	CacheDriverPostgres = "postgres"
	CacheDriverRedis    = "redis"
)

// Config holds all configuration for one explainer run.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	PDF           PDFConfig           `yaml:"pdf"`
	Context       ContextConfig       `yaml:"context"`
	Cache         CacheConfig         `yaml:"cache"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LLMConfig holds model provider settings.
type LLMConfig struct {
	Provider        string            `yaml:"provider"`
	Providers       map[string]APIKey `yaml:"providers"`
	Prompt          string            `yaml:"prompt"`
	MaxRetries      int               `yaml:"max_retries"`
	BackoffUnit     time.Duration     `yaml:"backoff_unit"`
	Timeout         time.Duration     `yaml:"timeout"`
	RequestInterval time.Duration     `yaml:"request_interval"`
	MaxTokens       int               `yaml:"max_tokens"`
	Temperature     float32           `yaml:"temperature"`
}

// APIKey holds credentials and model for one provider.
type APIKey struct {
	Key     string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// PDFConfig holds rendering settings.
type PDFConfig struct {
	DPI             int  `yaml:"dpi"`
	IncludePageText bool `yaml:"include_page_text"`
	PageTextLimit   int  `yaml:"page_text_limit"`
}

// ContextConfig holds rolling context settings.
type ContextConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxPages int  `yaml:"max_pages"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled bool        `yaml:"enabled"`
	Driver  string      `yaml:"driver"`
	DSN     string      `yaml:"dsn"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// OutputConfig holds output layout settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	ImageDir string `yaml:"image_dir"`
	CacheDir string `yaml:"cache_dir"`
	Format   string `yaml:"format"` // markdown, html or both
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultPrompt is the lecturer prompt sent with every page.
const DefaultPrompt = `Act as an experienced lecturer and explain this lecture slide in detail.

Please cover:
1. **Topic overview**: what is the main topic of this page?
2. **Core concepts**: list and explain the key concepts, definitions or terms on the page
3. **Formulas and figures**: if there are formulas, charts or diagrams, explain what they mean
4. **Difficult points**: point out what students are likely to find hard to understand
5. **Summary**: summarise the key points of the page in plain language
6. **Link to earlier pages**: if information about earlier pages is provided, explain how this page builds on it

Answer clearly, as if you were explaining the material to a student.`

// Load reads configuration with Read and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Read builds configuration from defaults, an optional YAML file, .env files
// and environment variables, without validating it. Callers that still
// apply command line overrides validate afterwards.
func Read(path string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Providers: map[string]APIKey{
				ProviderOpenAI:     {Model: "gpt-4o"},
				ProviderClaude:     {Model: "claude-3-opus-20240229"},
				ProviderGemini:     {Model: "gemini-1.5-pro"},
				ProviderOpenRouter: {Model: "google/gemini-2.5-flash-preview-09-2025", BaseURL: "https://openrouter.ai/api/v1"},
			},
			Prompt:          DefaultPrompt,
			MaxRetries:      3,
			BackoffUnit:     5 * time.Second,
			Timeout:         60 * time.Second,
			RequestInterval: 1 * time.Second,
			MaxTokens:       2000,
			Temperature:     0.7,
		},
		PDF: PDFConfig{
			DPI:             200,
			IncludePageText: true,
			PageTextLimit:   500,
		},
		Context: ContextConfig{
			Enabled:  true,
			MaxPages: 3,
		},
		Cache: CacheConfig{
			Enabled: true,
			Driver:  CacheDriverFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "pdfx:",
			},
		},
		Output: OutputConfig{
			Dir:      "output",
			ImageDir: "images",
			CacheDir: "cache",
			Format:   "both",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}

	if c.ProviderSettings().Key == "" {
		return fmt.Errorf("no API key configured for provider %q (set %s)", c.LLM.Provider, apiKeyEnv[c.LLM.Provider])
	}

	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.LLM.MaxRetries)
	}

	if c.LLM.BackoffUnit < 0 || c.LLM.RequestInterval < 0 {
		return fmt.Errorf("backoff_unit and request_interval must not be negative")
	}

	if c.PDF.DPI < 36 || c.PDF.DPI > 600 {
		return fmt.Errorf("dpi must be between 36 and 600, got %d", c.PDF.DPI)
	}

	if c.Context.MaxPages < 0 {
		return fmt.Errorf("context max_pages must not be negative, got %d", c.Context.MaxPages)
	}

	switch c.Cache.Driver {
	case CacheDriverFile, CacheDriverSQLite, CacheDriverPostgres, CacheDriverRedis:
	default:
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Cache.Driver == CacheDriverPostgres && c.Cache.DSN == "" {
		return fmt.Errorf("cache driver postgres requires a dsn")
	}

	switch c.Output.Format {
	case "markdown", "html", "both":
	default:
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}

	return nil
}

// ProviderSettings returns the credentials for the selected provider.
func (c *Config) ProviderSettings() APIKey {
	return c.LLM.Providers[c.LLM.Provider]
}

// ContextPages returns the effective rolling context size; zero disables it.
func (c *Config) ContextPages() int {
	if !c.Context.Enabled {
		return 0
	}
	return c.Context.MaxPages
}

var apiKeyEnv = map[string]string{
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderClaude:     "ANTHROPIC_API_KEY",
	ProviderGemini:     "GOOGLE_API_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
}

var modelEnv = map[string]string{
	ProviderOpenAI:     "OPENAI_MODEL",
	ProviderClaude:     "ANTHROPIC_MODEL",
	ProviderGemini:     "GOOGLE_MODEL",
	ProviderOpenRouter: "OPENROUTER_MODEL",
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = map[string]APIKey{}
	}
	for provider, env := range apiKeyEnv {
		settings := cfg.LLM.Providers[provider]
		if v := os.Getenv(env); v != "" {
			settings.Key = v
		}
		if v := os.Getenv(modelEnv[provider]); v != "" {
			settings.Model = v
		}
		cfg.LLM.Providers[provider] = settings
	}

	if v := os.Getenv("DEFAULT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}

	if v, ok := envInt("PDF_DPI"); ok {
		cfg.PDF.DPI = v
	}

	if v, ok := envInt("MAX_RETRIES"); ok {
		cfg.LLM.MaxRetries = v
	}

	if v, ok := envInt("REQUEST_TIMEOUT"); ok {
		cfg.LLM.Timeout = time.Duration(v) * time.Second
	}

	if v, ok := envBool("ENABLE_CONTEXT_LINKING"); ok {
		cfg.Context.Enabled = v
	}

	if v, ok := envInt("MAX_CONTEXT_PAGES"); ok {
		cfg.Context.MaxPages = v
	}

	if v, ok := envBool("ENABLE_CACHE"); ok {
		cfg.Cache.Enabled = v
	}

	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}

	if v := os.Getenv("CACHE_DSN"); v != "" {
		cfg.Cache.DSN = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = CacheDriverRedis
		cfg.Cache.Redis.URL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	return strings.EqualFold(strings.TrimSpace(v), "true"), true
}
