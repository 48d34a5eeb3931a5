package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError is a non-2xx answer from a provider endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth retrying: a timeout, a rate
// limit, or a server-side failure. Classification only looks at error
// types and status codes, never at message text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	return false
}
