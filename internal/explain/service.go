// Package explain runs the page pipeline: range selection, rendering,
// context-aware model calls and result caching.
package explain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/langlang056/pdf-for-college/internal/cache"
	"github.com/langlang056/pdf-for-college/internal/config"
	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
	"github.com/langlang056/pdf-for-college/internal/pdf"
	"github.com/langlang056/pdf-for-college/internal/rollup"
)

// State is a step of the run state machine.
type State string

const (
	StateIdle            State = "idle"
	StateCacheHit        State = "cache_hit"
	StateRangeSelected   State = "range_selected"
	StateImagesExtracted State = "images_extracted"
	StateAnalyzing       State = "analyzing"
	StateCompleted       State = "completed"
)

// RunRequest describes one run.
type RunRequest struct {
	PDFPath   string
	PageRange string
	OutputDir string // defaults to the configured output dir
	// UseCache lets a valid cached record short-circuit the run
	UseCache bool
	// WriteCache persists the results once every page is processed
	WriteCache bool
}

// Service orchestrates one document run at a time.
type Service struct {
	cfg      *config.Config
	opener   domain.Opener
	analyzer domain.Analyzer
	logger   *observability.Logger

	openStore func(ctx context.Context, outputDir string) (cache.Store, error)
	pause     func(ctx context.Context, d time.Duration) error
	newRunID  func() string
	onState   func(State)
}

// NewService creates a new explain service
func NewService(cfg *config.Config, opener domain.Opener, analyzer domain.Analyzer, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	s := &Service{
		cfg:      cfg,
		opener:   opener,
		analyzer: analyzer,
		logger:   logger.WithOperation("explain"),
		pause:    sleepContext,
		newRunID: func() string { return uuid.NewString() },
		onState:  func(State) {},
	}
	s.openStore = func(ctx context.Context, outputDir string) (cache.Store, error) {
		return cache.OpenStore(ctx, s.cfg, outputDir)
	}
	return s
}

func (s *Service) outputDir(req RunRequest) string {
	if req.OutputDir != "" {
		return req.OutputDir
	}
	return s.cfg.Output.Dir
}

// Run processes one PDF. RangeError, ExtractionError and cancellation end
// the run with an error; model failures are recorded per page and the run
// still completes.
func (s *Service) Run(ctx context.Context, req RunRequest, eventCh chan<- domain.StreamEvent) (*domain.RunResult, error) {
	startTime := time.Now()
	runID := s.newRunID()
	logger := s.logger.WithRun(runID)
	outDir := s.outputDir(req)

	s.onState(StateIdle)
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting explanation of %s", req.PDFPath),
		Timestamp: time.Now(),
	})

	fingerprint, err := cache.Fingerprint(req.PDFPath)
	if err != nil {
		return nil, s.fail(eventCh, domain.IOError("Failed to fingerprint source", err))
	}
	logger = logger.WithFingerprint(fingerprint)

	results := s.openResults(ctx, req, outDir, logger)
	if results != nil {
		defer func() {
			if err := results.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close cache store")
			}
		}()
	}

	if req.UseCache && results != nil {
		if pages, ok := results.Load(ctx, fingerprint); ok {
			s.onState(StateCacheHit)
			logger.Info().Int("pages", len(pages)).Msg("Using cached results")
			s.emitEvent(eventCh, domain.StreamEvent{
				Type:      domain.EventCacheHit,
				Total:     len(pages),
				Payload:   fmt.Sprintf("Loaded %d cached pages", len(pages)),
				Timestamp: time.Now(),
			})
			return s.complete(eventCh, logger, &domain.RunResult{
				Document: domain.Document{FilePath: req.PDFPath, Fingerprint: fingerprint},
				Pages:    pages,
				Stats: domain.ProcessingStats{
					RunID:           runID,
					PagesProcessed:  len(pages),
					SuccessfulPages: len(pages),
					CacheHit:        true,
				},
			}, startTime), nil
		}
	}

	renderer, err := s.opener.Open(req.PDFPath)
	if err != nil {
		return nil, s.fail(eventCh, err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close document")
		}
	}()

	doc := domain.Document{FilePath: req.PDFPath, TotalPages: renderer.PageCount(), Fingerprint: fingerprint}

	selected, err := pdf.ParseRange(req.PageRange, doc.TotalPages)
	if err != nil {
		return nil, s.fail(eventCh, err)
	}
	s.onState(StateRangeSelected)
	logger.Info().Int("total_pages", doc.TotalPages).Ints("pages", selected).Msg("Pages selected")
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventRangeSelected,
		Total:     len(selected),
		Payload:   selected,
		Timestamp: time.Now(),
	})

	images, err := s.extractImages(ctx, renderer, selected, filepath.Join(outDir, s.cfg.Output.ImageDir), eventCh)
	if err != nil {
		return nil, s.fail(eventCh, err)
	}
	s.onState(StateImagesExtracted)
	logger.Info().Int("images", len(images)).Msg("Pages rendered")

	s.onState(StateAnalyzing)
	pages, failed, err := s.analyzePages(ctx, renderer, images, logger, eventCh)
	if err != nil {
		return nil, s.fail(eventCh, err)
	}

	if req.WriteCache && results != nil {
		if failed > 0 {
			// Placeholders are not cached so a rerun retries those pages.
			logger.Warn().Int("failed", failed).Msg("Not caching run with failed pages")
		} else if err := results.Save(ctx, fingerprint, req.PDFPath, s.cfg.LLM.Provider, pages); err != nil {
			logger.Warn().Err(err).Msg("Failed to save results to cache")
		}
	}

	return s.complete(eventCh, logger, &domain.RunResult{
		Document: doc,
		Pages:    pages,
		Stats: domain.ProcessingStats{
			RunID:           runID,
			PagesProcessed:  len(pages),
			SuccessfulPages: len(pages) - failed,
			FailedPages:     failed,
		},
	}, startTime), nil
}

// openResults opens the result cache when the run reads or writes it. A
// store that cannot be opened only disables caching for this run.
func (s *Service) openResults(ctx context.Context, req RunRequest, outDir string, logger *observability.Logger) *cache.ResultCache {
	if !s.cfg.Cache.Enabled || (!req.UseCache && !req.WriteCache) {
		return nil
	}
	store, err := s.openStore(ctx, outDir)
	if err != nil {
		logger.Warn().Err(err).Str("driver", s.cfg.Cache.Driver).Msg("Cache unavailable, continuing without it")
		return nil
	}
	return cache.NewResultCache(store, logger)
}

// extractImages renders every selected page in order. Any failure is fatal.
func (s *Service) extractImages(ctx context.Context, r domain.Renderer, pages []int, dir string, eventCh chan<- domain.StreamEvent) ([]domain.PageImage, error) {
	images := make([]domain.PageImage, 0, len(pages))
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := r.RenderPage(ctx, n, s.cfg.PDF.DPI, dir)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !errors.Is(err, domain.ErrExtraction) {
				err = domain.ExtractionError(fmt.Sprintf("Failed to render page %d", n), err)
			}
			return nil, err
		}
		images = append(images, img)

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventPageExtracted,
			PageNumber: n,
			Total:      len(pages),
			Payload:    img.ImagePath,
			Timestamp:  time.Now(),
		})
	}
	return images, nil
}

// analyzePages calls the model for each page in order, threading the
// rolling context. It returns the results and the number of failed pages.
func (s *Service) analyzePages(ctx context.Context, r domain.Renderer, images []domain.PageImage, logger *observability.Logger, eventCh chan<- domain.StreamEvent) ([]domain.PageResult, int, error) {
	tracker := rollup.NewTracker(s.cfg.ContextPages())
	results := make([]domain.PageResult, 0, len(images))
	failed := 0

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("completed", len(results)).Msg("Run interrupted")
			return nil, failed, fmt.Errorf("run interrupted after %d of %d pages: %w", len(results), len(images), err)
		}

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventPageProcessing,
			PageNumber: img.PageNumber,
			Total:      len(images),
			Payload:    fmt.Sprintf("Processing page %d", img.PageNumber),
			Timestamp:  time.Now(),
		})

		req := domain.AnalysisRequest{
			PageNumber:    img.PageNumber,
			ImagePath:     img.ImagePath,
			PriorContext:  tracker.Render(),
			AuxiliaryText: s.auxiliaryText(r, img.PageNumber, logger),
		}

		// In-flight calls finish even if the run is interrupted.
		text, err := s.analyzer.Analyze(context.WithoutCancel(ctx), req)
		eventType := domain.EventPageComplete
		if err != nil {
			var ie *domain.InvocationError
			if !errors.As(err, &ie) {
				ie = &domain.InvocationError{Type: domain.ErrorTypePermanent, PageNumber: img.PageNumber, Attempts: 1, Err: err}
			}
			text = ie.Placeholder()
			eventType = domain.EventPageFailed
			failed++
			logger.Page(zerolog.ErrorLevel, img.PageNumber).Int("attempts", ie.Attempts).Err(err).Msg("Page analysis failed")
		} else {
			logger.Page(zerolog.InfoLevel, img.PageNumber).Msg("Page analyzed")
		}

		page := domain.PageResult{
			PageNumber:  img.PageNumber,
			ImagePath:   img.ImagePath,
			Explanation: text,
		}
		results = append(results, page)
		tracker.Push(rollup.Summarize(text, img.PageNumber))

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       eventType,
			PageNumber: img.PageNumber,
			Total:      len(images),
			Payload:    page,
			Timestamp:  time.Now(),
		})

		if i < len(images)-1 && s.cfg.LLM.RequestInterval > 0 {
			_ = s.pause(ctx, s.cfg.LLM.RequestInterval)
		}
	}

	return results, failed, nil
}

// auxiliaryText returns the page's own text layer, trimmed to the
// configured limit, or "" when disabled or unavailable.
func (s *Service) auxiliaryText(r domain.Renderer, page int, logger *observability.Logger) string {
	if !s.cfg.PDF.IncludePageText {
		return ""
	}
	text, err := r.PageText(page)
	if err != nil {
		logger.Page(zerolog.DebugLevel, page).Err(err).Msg("No page text")
		return ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if limit := s.cfg.PDF.PageTextLimit; limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	return "Page text content:\n" + text
}

func (s *Service) complete(eventCh chan<- domain.StreamEvent, logger *observability.Logger, result *domain.RunResult, startTime time.Time) *domain.RunResult {
	result.Stats.TotalTime = time.Since(startTime)
	s.onState(StateCompleted)

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:  domain.EventComplete,
		Total: result.Stats.PagesProcessed,
		Payload: fmt.Sprintf("Explanation complete: %d/%d pages successful in %v",
			result.Stats.PagesProcessed-result.Stats.FailedPages, result.Stats.PagesProcessed, result.Stats.TotalTime),
		Timestamp: time.Now(),
	})

	logger.Info().
		Int("pages", result.Stats.PagesProcessed).
		Int("failed", result.Stats.FailedPages).
		Bool("cache_hit", result.Stats.CacheHit).
		Dur("duration", result.Stats.TotalTime).
		Msg("Run complete")
	return result
}

func (s *Service) fail(eventCh chan<- domain.StreamEvent, err error) error {
	s.logger.Error().Err(err).Msg("Run failed")
	s.emitError(eventCh, err)
	return err
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
