package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/langlang056/pdf-for-college/cmd/pdf-explainer/ui"
	"github.com/langlang056/pdf-for-college/internal/cache"
	"github.com/langlang056/pdf-for-college/internal/config"
	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/explain"
	"github.com/langlang056/pdf-for-college/internal/llm"
	"github.com/langlang056/pdf-for-college/internal/pdf"
	"github.com/langlang056/pdf-for-college/internal/render"
)

// confirmPageThreshold is the page count above which the run asks first.
const confirmPageThreshold = 5

type explainOptions struct {
	pages      string
	output     string
	format     string
	provider   string
	prompt     string
	dpi        int
	maxContext int
	noContext  bool
	noCache    bool
	yes        bool
}

var explainOpts explainOptions

var explainCmd = &cobra.Command{
	Use:   "explain <pdf>",
	Short: "Explain every selected page of a PDF",
	Example: `  pdf-explainer explain lecture.pdf
  pdf-explainer explain lecture.pdf --pages 1-5,8 --provider gemini
  pdf-explainer explain lecture.pdf -o notes --format markdown --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	f := explainCmd.Flags()
	f.StringVarP(&explainOpts.pages, "pages", "p", "", "page range, e.g. 1-5,8,10-12 (default: all pages)")
	f.StringVarP(&explainOpts.output, "output", "o", "", "output directory (default from config)")
	f.StringVar(&explainOpts.format, "format", "", "output format: markdown, html or both")
	f.StringVar(&explainOpts.provider, "provider", "", "model provider: openai, claude, gemini or openrouter")
	f.StringVar(&explainOpts.prompt, "prompt", "", "custom prompt template")
	f.IntVar(&explainOpts.dpi, "dpi", 0, "render resolution")
	f.IntVar(&explainOpts.maxContext, "max-context", 0, "number of preceding page summaries sent as context")
	f.BoolVar(&explainOpts.noContext, "no-context", false, "do not send preceding page summaries")
	f.BoolVar(&explainOpts.noCache, "no-cache", false, "neither read nor write cached results")
	f.BoolVarP(&explainOpts.yes, "yes", "y", false, "answer yes to every question")
	rootCmd.AddCommand(explainCmd)
}

// applyExplainFlags overlays explicitly set flags onto cfg.
func applyExplainFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = explainOpts.output
	}
	if flags.Changed("format") {
		cfg.Output.Format = explainOpts.format
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = explainOpts.provider
	}
	if flags.Changed("prompt") {
		cfg.LLM.Prompt = explainOpts.prompt
	}
	if flags.Changed("dpi") {
		cfg.PDF.DPI = explainOpts.dpi
	}
	if flags.Changed("max-context") {
		cfg.Context.MaxPages = explainOpts.maxContext
	}
	if explainOpts.noContext {
		cfg.Context.Enabled = false
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]

	cfg, err := readConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyExplainFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)

	info, err := pdf.CheckSource(pdfPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := llm.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	svc := explain.NewService(cfg, pdf.NewOpener(), analyzer, logger)

	ui.Section("PDF Slide Explainer")
	ui.Info("PDF: %s (%s)", pdfPath, ui.FormatSize(info.Size()))
	ui.Info("Provider: %s (%s)", cfg.LLM.Provider, cfg.ProviderSettings().Model)
	ui.Info("Output: %s", cfg.Output.Dir)
	if k := cfg.ContextPages(); k > 0 {
		ui.Info("Context: %d preceding page(s)", k)
	} else {
		ui.Info("Context: disabled")
	}
	ui.Newline()

	useCache, err := decideCache(ctx, svc, cfg, pdfPath)
	if err != nil {
		return err
	}

	if !useCache {
		proceed, err := confirmRun(cfg, pdfPath)
		if err != nil {
			return err
		}
		if !proceed {
			ui.Warning("Cancelled")
			return nil
		}
	}

	req := explain.RunRequest{
		PDFPath:    pdfPath,
		PageRange:  explainOpts.pages,
		OutputDir:  cfg.Output.Dir,
		UseCache:   useCache,
		WriteCache: cfg.Cache.Enabled && !explainOpts.noCache,
	}

	result, err := runWithProgress(ctx, svc, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.Warning("Interrupted")
		}
		return err
	}

	doc := render.NewDocument(pdfPath, cfg.LLM.Provider, result.Pages)
	files, err := render.Write(cfg.Output.Dir, cfg.Output.Format, doc)
	if err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	printSummary(result, files)
	return nil
}

// decideCache reports whether a cached record should replace model calls.
func decideCache(ctx context.Context, svc *explain.Service, cfg *config.Config, pdfPath string) (bool, error) {
	if !cfg.Cache.Enabled || explainOpts.noCache {
		return false, nil
	}

	rec, err := svc.CachedRecord(ctx, pdfPath, cfg.Output.Dir)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, domain.ErrCacheCorrupt) {
			ui.Warning("Cache unavailable: %v", err)
		}
		return false, nil
	}

	ui.Info("Found cached results: %d page(s) from %s, created %s", len(rec.Pages), rec.Provider, ui.FormatTime(rec.CreatedAt))
	if explainOpts.yes {
		return true, nil
	}
	return ui.Confirm("Use cached results?", true)
}

// confirmRun shows the cost estimate and asks before large runs.
func confirmRun(cfg *config.Config, pdfPath string) (bool, error) {
	r, err := pdf.NewOpener().Open(pdfPath)
	if err != nil {
		return false, err
	}
	total := r.PageCount()
	_ = r.Close()

	pages, err := pdf.ParseRange(explainOpts.pages, total)
	if err != nil {
		return false, err
	}

	cost := llm.EstimateCost(cfg.LLM.Provider, len(pages))
	ui.Info("Pages: %d of %d, estimated cost %s", len(pages), total, ui.FormatCost(cost))

	if len(pages) <= confirmPageThreshold || explainOpts.yes {
		return true, nil
	}
	return ui.Confirm(fmt.Sprintf("Process %d pages?", len(pages)), false)
}

// runWithProgress runs the service while a RunView draws its events.
func runWithProgress(ctx context.Context, svc *explain.Service, req explain.RunRequest) (*domain.RunResult, error) {
	eventCh := make(chan domain.StreamEvent, 100)

	var (
		result *domain.RunResult
		err    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err = svc.Run(ctx, req, eventCh)
		close(eventCh)
	}()

	ui.NewRunView().Watch(eventCh)
	<-done
	return result, err
}

func printSummary(result *domain.RunResult, files []string) {
	stats := result.Stats

	ui.Section("Summary")
	ui.Fields(
		[2]string{"Run ID", stats.RunID},
		[2]string{"Pages", strconv.Itoa(stats.PagesProcessed)},
		[2]string{"Succeeded", strconv.Itoa(stats.SuccessfulPages)},
		[2]string{"Failed", strconv.Itoa(stats.FailedPages)},
		[2]string{"From cache", strconv.FormatBool(stats.CacheHit)},
		[2]string{"Duration", ui.FormatDuration(stats.TotalTime)},
	)
	ui.Newline()

	if stats.FailedPages > 0 {
		ui.Warning("%d page(s) could not be explained; their sections contain the error", stats.FailedPages)
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		ui.Success("Wrote %s", abs)
	}
}
