// Package observability provides structured logging for explain runs.
//
// Every run logs under a run id and the source fingerprint, so the lines of
// one run can be pulled out of a shared log with a single filter.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Field names shared by every component.
const (
	FieldRun         = "run_id"
	FieldOperation   = "operation"
	FieldFingerprint = "fingerprint"
	FieldPage        = "page"
	FieldProvider    = "provider"
)

// Logger is a zerolog logger carrying run scoped fields.
type Logger struct {
	zl zerolog.Logger
}

// LogConfig selects level, encoding and destination.
type LogConfig struct {
	Level       string
	Format      string // json or console
	Output      io.Writer
	ServiceName string
}

// NewLogger builds a logger. Output defaults to stderr so stdout stays free
// for the rendered documents and CLI messages.
func NewLogger(cfg LogConfig) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	return &Logger{zl: ctx.Logger()}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) with(key, val string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, val).Logger()}
}

// WithOperation tags lines with the component doing the work.
func (l *Logger) WithOperation(op string) *Logger { return l.with(FieldOperation, op) }

// WithRun tags lines with a run id.
func (l *Logger) WithRun(runID string) *Logger { return l.with(FieldRun, runID) }

// WithFingerprint tags lines with the source content hash.
func (l *Logger) WithFingerprint(fp string) *Logger { return l.with(FieldFingerprint, fp) }

// WithProvider tags lines with the model provider name.
func (l *Logger) WithProvider(name string) *Logger { return l.with(FieldProvider, name) }

// Page starts an event at level for one page.
func (l *Logger) Page(level zerolog.Level, page int) *zerolog.Event {
	return l.zl.WithLevel(level).Int(FieldPage, page)
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// ParseLevel maps a config level name to zerolog; unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
