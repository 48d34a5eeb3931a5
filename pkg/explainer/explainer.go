// Package explainer is the embeddable entry point to the slide explainer.
package explainer

import (
	"context"
	"os"

	"github.com/langlang056/pdf-for-college/internal/config"
	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/explain"
	"github.com/langlang056/pdf-for-college/internal/llm"
	"github.com/langlang056/pdf-for-college/internal/observability"
	"github.com/langlang056/pdf-for-college/internal/pdf"
	"github.com/langlang056/pdf-for-college/internal/render"
)

// Re-export types for public API
type (
	Config          = config.Config
	StreamEvent     = domain.StreamEvent
	EventType       = domain.EventType
	PageResult      = domain.PageResult
	RunResult       = domain.RunResult
	ProcessingStats = domain.ProcessingStats
	AnalysisRequest = domain.AnalysisRequest
	Analyzer        = domain.Analyzer
)

// Event type constants
const (
	EventStart          = domain.EventStart
	EventCacheHit       = domain.EventCacheHit
	EventRangeSelected  = domain.EventRangeSelected
	EventPageExtracted  = domain.EventPageExtracted
	EventPageProcessing = domain.EventPageProcessing
	EventPageComplete   = domain.EventPageComplete
	EventPageFailed     = domain.EventPageFailed
	EventError          = domain.EventError
	EventComplete       = domain.EventComplete
)

// Options selects what one run does.
type Options struct {
	PageRange string // empty means every page
	OutputDir string // empty means the configured output dir
	NoCache   bool   // neither read nor write cached results
}

// Client is the main entry point for the explainer library
type Client struct {
	cfg     *Config
	service *explain.Service
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// NewClient creates a client from .env and environment variables.
func NewClient() (*Client, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, domain.ConfigError("invalid configuration", err)
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client using the configured provider.
func NewClientWithConfig(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("invalid configuration", err)
	}

	logger := newLogger(cfg)
	analyzer, err := llm.NewAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:     cfg,
		service: explain.NewService(cfg, pdf.NewOpener(), analyzer, logger),
	}, nil
}

// NewClientWithAnalyzer creates a client that sends pages to analyzer. The
// configured retry policy is applied on top of it.
func NewClientWithAnalyzer(cfg *Config, analyzer Analyzer) *Client {
	logger := newLogger(cfg)
	retrier := llm.NewRetrier(analyzer, llm.RetryConfig{
		MaxAttempts: cfg.LLM.MaxRetries,
		BackoffUnit: cfg.LLM.BackoffUnit,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	return &Client{
		cfg:     cfg,
		service: explain.NewService(cfg, pdf.NewOpener(), retrier, logger),
	}
}

func newLogger(cfg *Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "pdf-explainer",
	})
}

func (c *Client) request(pdfPath string, opts Options) (explain.RunRequest, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return explain.RunRequest{}, domain.ValidationError("PDF file not found", err)
	}
	useCache := c.cfg.Cache.Enabled && !opts.NoCache
	return explain.RunRequest{
		PDFPath:    pdfPath,
		PageRange:  opts.PageRange,
		OutputDir:  opts.OutputDir,
		UseCache:   useCache,
		WriteCache: useCache,
	}, nil
}

// Explain runs the pipeline to completion and returns the ordered results.
func (c *Client) Explain(ctx context.Context, pdfPath string, opts Options) (*RunResult, error) {
	req, err := c.request(pdfPath, opts)
	if err != nil {
		return nil, err
	}
	return c.service.Run(ctx, req, nil)
}

// Outcome is the end of a background run: the result, or the error that
// stopped it.
type Outcome struct {
	Result *RunResult
	Err    error
}

// Process runs the pipeline in the background. Events stream on the first
// channel and are dropped if it is not drained; page complete and page
// failed events carry the PageResult. The second channel always yields
// exactly one Outcome.
func (c *Client) Process(ctx context.Context, pdfPath string, opts Options) (<-chan StreamEvent, <-chan Outcome, error) {
	req, err := c.request(pdfPath, opts)
	if err != nil {
		return nil, nil, err
	}

	eventCh := make(chan StreamEvent, 100)
	doneCh := make(chan Outcome, 1)

	go func() {
		defer close(doneCh)
		res, err := c.service.Run(ctx, req, eventCh)
		close(eventCh)
		doneCh <- Outcome{Result: res, Err: err}
	}()

	return eventCh, doneCh, nil
}

// WriteDocuments renders result into outputDir in the configured format and
// returns the files written.
func (c *Client) WriteDocuments(outputDir, pdfPath string, result *RunResult) ([]string, error) {
	if outputDir == "" {
		outputDir = c.cfg.Output.Dir
	}
	doc := render.NewDocument(pdfPath, c.cfg.LLM.Provider, result.Pages)
	return render.Write(outputDir, c.cfg.Output.Format, doc)
}
