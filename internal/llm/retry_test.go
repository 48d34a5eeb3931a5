package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

// scriptedAnalyzer returns errs in order, then reply.
type scriptedAnalyzer struct {
	errs  []error
	reply string
	calls int
}

func (s *scriptedAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return "", s.errs[s.calls-1]
	}
	return s.reply, nil
}

func newTestRetrier(next domain.Analyzer, attempts int) (*Retrier, *[]time.Duration) {
	r := NewRetrier(next, RetryConfig{MaxAttempts: attempts, BackoffUnit: 5 * time.Second}, observability.Nop())
	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func repeat(err error, n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}

func TestRetrier_SucceedsFirstTry(t *testing.T) {
	fake := &scriptedAnalyzer{reply: "explanation"}
	r, delays := newTestRetrier(fake, 3)

	got, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, "explanation", got)
	assert.Equal(t, 1, fake.calls)
	assert.Empty(t, *delays)
}

func TestRetrier_RecoversAfterTransient(t *testing.T) {
	fake := &scriptedAnalyzer{
		errs:  []error{&StatusError{StatusCode: 429}, context.DeadlineExceeded},
		reply: "ok",
	}
	r, delays := newTestRetrier(fake, 3)

	got, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, *delays)
}

func TestRetrier_ExhaustsWithLinearBackoff(t *testing.T) {
	for _, attempts := range []int{1, 3, 5} {
		fake := &scriptedAnalyzer{errs: repeat(&StatusError{StatusCode: 503}, 10)}
		r, delays := newTestRetrier(fake, attempts)

		_, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 4})
		require.Error(t, err)

		assert.Equal(t, attempts, fake.calls, "total calls equal max attempts")

		want := make([]time.Duration, 0, attempts-1)
		for i := 1; i < attempts; i++ {
			want = append(want, time.Duration(i)*5*time.Second)
		}
		assert.Equal(t, want, *delays)

		var ie *domain.InvocationError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, domain.ErrorTypeExhausted, ie.Type)
		assert.Equal(t, 4, ie.PageNumber)
		assert.Equal(t, attempts, ie.Attempts)
		assert.ErrorIs(t, err, domain.ErrExhausted)
		assert.Contains(t, ie.Placeholder(), "page 4")
	}
}

func TestRetrier_PermanentFailureNotRetried(t *testing.T) {
	fake := &scriptedAnalyzer{errs: []error{&StatusError{StatusCode: 401, Body: "bad key"}}}
	r, delays := newTestRetrier(fake, 3)

	_, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 9})
	require.Error(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Empty(t, *delays)
	assert.ErrorIs(t, err, domain.ErrPermanent)
	assert.True(t, domain.IsRecoverable(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 401, se.StatusCode)
}

func TestRetrier_TransientThenPermanent(t *testing.T) {
	fake := &scriptedAnalyzer{errs: []error{&StatusError{StatusCode: 500}, errors.New("malformed")}}
	r, delays := newTestRetrier(fake, 5)

	_, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 1})

	var ie *domain.InvocationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, domain.ErrorTypePermanent, ie.Type)
	assert.Equal(t, 2, ie.Attempts)
	assert.Equal(t, []time.Duration{5 * time.Second}, *delays)
}

func TestRetrier_AttemptTimeoutIsTransient(t *testing.T) {
	slow := analyzerFunc(func(ctx context.Context, req domain.AnalysisRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r := NewRetrier(slow, RetryConfig{MaxAttempts: 2, BackoffUnit: time.Millisecond, Timeout: 10 * time.Millisecond}, nil)

	_, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 1})
	assert.ErrorIs(t, err, domain.ErrExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrier_MinimumOneAttempt(t *testing.T) {
	fake := &scriptedAnalyzer{errs: repeat(&StatusError{StatusCode: 503}, 3)}
	r, _ := newTestRetrier(fake, 0)

	_, err := r.Analyze(context.Background(), domain.AnalysisRequest{PageNumber: 1})
	assert.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

type analyzerFunc func(ctx context.Context, req domain.AnalysisRequest) (string, error)

func (f analyzerFunc) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	return f(ctx, req)
}
