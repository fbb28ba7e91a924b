// Package errors defines the failure taxonomy shared across the assistant:
// transport failures (endpoint unreachable or speaking garbage), validation
// failures (well-formed JSON that misses the query schema), normalization
// failures (weather payload structurally unusable) and the terminal
// extraction failure raised when the repair budget is exhausted.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTransportFailure     ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeValidationFailure    ErrorCode = "VALIDATION_FAILURE"
	ErrCodeNormalizationFailure ErrorCode = "NORMALIZATION_FAILURE"
	ErrCodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
)

// StandardError is a structured application error carrying a code the caller
// can branch on when choosing a user-facing message.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// FieldError describes a single schema violation in enough detail to build a
// repair instruction for the model.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a decoded object that is well-formed JSON but does
// not satisfy the query schema. It keeps the offending object so the repair
// turn can echo it back verbatim.
type ValidationError struct {
	Fields    []FieldError           `json:"fields"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", ErrCodeValidationFailure, strings.Join(e.FieldMessages(), "; "))
}

// FieldMessages returns one "field: message" line per violation.
func (e *ValidationError) FieldMessages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return msgs
}

// NewTransportError creates a terminal, non-retryable transport error.
func NewTransportError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   fmt.Sprintf("Service '%s' unreachable or returned an unusable response", service),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a recoverable schema-violation error.
func NewValidationError(raw map[string]interface{}, fields []FieldError) *ValidationError {
	return &ValidationError{
		Fields:    fields,
		Raw:       raw,
		Timestamp: time.Now().UTC(),
	}
}

// NewNormalizationError creates a terminal weather-payload error.
func NewNormalizationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNormalizationFailure,
		Message:   "Weather payload is not shaped like a weather response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates the terminal error surfaced when the
// repair budget is exhausted without a schema-valid object.
func NewExtractionFailedError(attempts int, last *ValidationError) *StandardError {
	details := fmt.Sprintf("no schema-valid object after %d repair attempt(s)", attempts)
	if last != nil {
		details = fmt.Sprintf("%s; last violations: %s", details, strings.Join(last.FieldMessages(), "; "))
	}
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Could not extract a valid query from the user text",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf returns the error code carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Code
	}
	var val *ValidationError
	if stderrors.As(err, &val) {
		return ErrCodeValidationFailure
	}
	return ""
}

// AsValidation unwraps err as a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var val *ValidationError
	if stderrors.As(err, &val) {
		return val, true
	}
	return nil, false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return CodeOf(err) == ErrCodeTransportFailure
}

// IsNormalization reports whether err is a normalization failure.
func IsNormalization(err error) bool {
	return CodeOf(err) == ErrCodeNormalizationFailure
}
