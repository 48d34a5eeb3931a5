package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffUnit = 5 * time.Second
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	// MaxAttempts is the total number of calls made for one page
	MaxAttempts int
	// BackoffUnit is multiplied by the retry number to get the wait before it
	BackoffUnit time.Duration
	// Timeout bounds each single attempt; zero means no bound
	Timeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: defaultMaxAttempts,
		BackoffUnit: defaultBackoffUnit,
	}
}

// Backoff returns the wait before retry number retry (1-indexed).
func (c RetryConfig) Backoff(retry int) time.Duration {
	return time.Duration(retry) * c.BackoffUnit
}

// Retrier decorates an Analyzer with linear backoff on transient failures.
// Every failure it returns is a *domain.InvocationError.
type Retrier struct {
	next   domain.Analyzer
	config RetryConfig
	logger *observability.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps next.
func NewRetrier(next domain.Analyzer, config RetryConfig, logger *observability.Logger) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Retrier{
		next:   next,
		config: config,
		logger: logger.WithOperation("llm"),
		sleep:  sleepContext,
	}
}

// Analyze calls the wrapped analyzer until it succeeds, fails permanently,
// or runs out of attempts.
func (r *Retrier) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsTransient(err) {
			r.logger.Page(zerolog.WarnLevel, req.PageNumber).Int("attempt", attempt).Err(err).Msg("Model call failed permanently")
			return "", &domain.InvocationError{
				Type:       domain.ErrorTypePermanent,
				PageNumber: req.PageNumber,
				Attempts:   attempt,
				Err:        err,
			}
		}

		// Don't wait after last attempt
		if attempt == r.config.MaxAttempts {
			break
		}

		backoff := r.config.Backoff(attempt)
		r.logger.Page(zerolog.WarnLevel, req.PageNumber).
			Int("attempt", attempt).
			Int("max_attempts", r.config.MaxAttempts).
			Dur("backoff", backoff).
			Err(err).
			Msg("Transient model failure, retrying")

		if err := r.sleep(ctx, backoff); err != nil {
			return "", &domain.InvocationError{
				Type:       domain.ErrorTypePermanent,
				PageNumber: req.PageNumber,
				Attempts:   attempt,
				Err:        err,
			}
		}
	}

	return "", &domain.InvocationError{
		Type:       domain.ErrorTypeExhausted,
		PageNumber: req.PageNumber,
		Attempts:   r.config.MaxAttempts,
		Err:        lastErr,
	}
}

func (r *Retrier) attempt(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	return r.next.Analyze(ctx, req)
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
