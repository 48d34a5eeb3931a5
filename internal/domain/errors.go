package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeRange      ErrorType = "range"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypePermanent  ErrorType = "invocation_permanent"
	ErrorTypeExhausted  ErrorType = "retry_exhausted"
	ErrorTypeCache      ErrorType = "cache_corrupt"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// Sentinels usable with errors.Is; any *DomainError of the same type matches.
var (
	ErrRange        = &DomainError{Type: ErrorTypeRange}
	ErrExtraction   = &DomainError{Type: ErrorTypeExtraction}
	ErrPermanent    = &DomainError{Type: ErrorTypePermanent}
	ErrExhausted    = &DomainError{Type: ErrorTypeExhausted}
	ErrCacheCorrupt = &DomainError{Type: ErrorTypeCache}
	ErrValidation   = &DomainError{Type: ErrorTypeValidation}
	ErrConfig       = &DomainError{Type: ErrorTypeConfig}
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError of the same type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func RangeError(message string, err error) *DomainError {
	return NewError(ErrorTypeRange, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func CacheCorruptError(message string, err error) *DomainError {
	return NewError(ErrorTypeCache, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// InvocationError is a model call failure that the pipeline recovers from
// at page level. Type is ErrorTypePermanent or ErrorTypeExhausted.
type InvocationError struct {
	Type       ErrorType
	PageNumber int
	Attempts   int
	Err        error
}

func (e *InvocationError) Error() string {
	switch e.Type {
	case ErrorTypeExhausted:
		return fmt.Sprintf("[%s] page %d: gave up after %d attempts: %v", e.Type, e.PageNumber, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("[%s] page %d: attempt %d failed: %v", e.Type, e.PageNumber, e.Attempts, e.Err)
	}
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Is matches the DomainError sentinel of the same type.
func (e *InvocationError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Placeholder is the text recorded as the page's explanation in place of a
// model answer.
func (e *InvocationError) Placeholder() string {
	return fmt.Sprintf("❌ Failed to analyze page %d after %d attempt(s): %v", e.PageNumber, e.Attempts, e.Err)
}

// IsRecoverable reports whether err is a page-level model failure the run
// should continue past.
func IsRecoverable(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
