package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "net failure" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return false }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "net timeout", err: timeoutErr{timeout: true}, want: true},
		{name: "net non-timeout", err: timeoutErr{timeout: false}, want: false},
		{name: "408", err: &StatusError{StatusCode: 408}, want: true},
		{name: "429", err: &StatusError{StatusCode: 429}, want: true},
		{name: "500", err: &StatusError{StatusCode: 500}, want: true},
		{name: "502", err: &StatusError{StatusCode: 502}, want: true},
		{name: "503", err: &StatusError{StatusCode: 503}, want: true},
		{name: "504", err: &StatusError{StatusCode: 504}, want: true},
		{name: "wrapped 503", err: fmt.Errorf("call: %w", &StatusError{StatusCode: 503}), want: true},
		{name: "400", err: &StatusError{StatusCode: 400}, want: false},
		{name: "401", err: &StatusError{StatusCode: 401}, want: false},
		{name: "403", err: &StatusError{StatusCode: 403}, want: false},
		{name: "404", err: &StatusError{StatusCode: 404}, want: false},
		{name: "message mentioning timeout", err: errors.New("upstream timeout 504 429"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "claude: API returned status 401", (&StatusError{Provider: "claude", StatusCode: 401}).Error())
	assert.Equal(t, "gemini: API returned status 429: slow down",
		(&StatusError{Provider: "gemini", StatusCode: 429, Body: "slow down"}).Error())
}
