package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType int

const (
	ErrInvalidInput ErrorType = iota
	ErrParseFailure
	ErrUpstreamRejected
	ErrUpstreamTransport
	ErrStream
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// LanzouError is the error surfaced by every fatal resolution or relay failure.
// Code doubles as the HTTP status of the error envelope.
type LanzouError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"msg"`
	Type       ErrorType              `json:"type"`
	Severity   ErrorSeverity          `json:"severity"`
	URL        string                 `json:"url,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *LanzouError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("lanzou error (code: %d, type: %s)", e.Code, e.Type.String()))

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.cause != nil {
		parts = append(parts, e.cause.Error())
	}

	return strings.Join(parts, " - ")
}

// Unwrap returns the underlying cause, if any
func (e *LanzouError) Unwrap() error {
	return e.cause
}

// DetailedError returns a detailed error message with all available information
func (e *LanzouError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s] %s Error", e.Severity.String(), e.Type.String()))

	if e.Code != 0 {
		parts = append(parts, fmt.Sprintf("Code: %d", e.Code))
	}
	if e.Message != "" {
		parts = append(parts, fmt.Sprintf("Message: %s", e.Message))
	}
	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.cause))
	}

	// URLs may carry share passwords or signed download parameters
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("URL: %s", redactSensitiveURL(e.URL)))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("Context: %s", strings.Join(contextParts, ", ")))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, "\n")
}

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrParseFailure:
		return "ParseFailure"
	case ErrUpstreamRejected:
		return "UpstreamRejected"
	case ErrUpstreamTransport:
		return "UpstreamTransportError"
	case ErrStream:
		return "StreamError"
	default:
		return "Unknown"
	}
}

// String returns the string representation of ErrorSeverity
func (es ErrorSeverity) String() string {
	switch es {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// NewLanzouError creates a new LanzouError with a default suggestion and severity
func NewLanzouError(code int, message string, errorType ErrorType) *LanzouError {
	err := &LanzouError{
		Code:     code,
		Message:  message,
		Type:     errorType,
		Severity: SeverityError,
		Context:  make(map[string]interface{}),
	}

	err.Suggestion = getDefaultSuggestion(errorType, code)
	err.Severity = getDefaultSeverity(errorType)

	return err
}

// WithSuggestion adds a custom suggestion to the error
func (e *LanzouError) WithSuggestion(suggestion string) *LanzouError {
	e.Suggestion = suggestion
	return e
}

// WithURL adds URL context to the error (will be redacted in logs)
func (e *LanzouError) WithURL(url string) *LanzouError {
	e.URL = url
	return e
}

// WithContext adds context information to the error
func (e *LanzouError) WithContext(key string, value interface{}) *LanzouError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error
func (e *LanzouError) WithCause(cause error) *LanzouError {
	e.cause = cause
	return e
}

// AsLanzouError extracts a *LanzouError from an error chain
func AsLanzouError(err error) (*LanzouError, bool) {
	var le *LanzouError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsType reports whether err carries a LanzouError of the given type
func IsType(err error, errorType ErrorType) bool {
	le, ok := AsLanzouError(err)
	return ok && le.Type == errorType
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field      string                 `json:"field"`
	Message    string                 `json:"message"`
	Value      interface{}            `json:"value,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := []string{fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("Suggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, " - ")
}

// DetailedError returns a detailed validation error message
func (e *ValidationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Validation Error for field '%s'", e.Field))
	parts = append(parts, fmt.Sprintf("Message: %s", e.Message))

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("Provided value: %v", e.Value))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("Context: %s", strings.Join(contextParts, ", ")))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, "\n")
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewValidationErrorWithValue creates a ValidationError with the invalid value
func NewValidationErrorWithValue(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Context: make(map[string]interface{}),
	}
}

// WithSuggestion adds a suggestion to the validation error
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.Suggestion = suggestion
	return e
}

// WithContext adds context to the validation error
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func getDefaultSuggestion(errorType ErrorType, code int) string {
	switch errorType {
	case ErrInvalidInput:
		return "Provide a Lanzou share link (e.g. https://www.lanzoux.com/iXXXX) and the share password if it has one"
	case ErrParseFailure:
		return "The share page layout may have changed; the link may also be invalid"
	case ErrUpstreamRejected:
		return "Check that the share still exists and the password is correct"
	case ErrUpstreamTransport:
		if code >= 500 {
			return "The provider returned a server error. Try again later"
		}
		return "Check your network connection or proxy settings"
	case ErrStream:
		return "The download was interrupted; request the file again"
	default:
		return "Please check the error details and try again"
	}
}

func getDefaultSeverity(errorType ErrorType) ErrorSeverity {
	switch errorType {
	case ErrInvalidInput, ErrUpstreamRejected:
		return SeverityWarning
	case ErrUpstreamTransport, ErrStream:
		return SeverityError
	default:
		return SeverityError
	}
}

// redactSensitiveURL drops the query string, which may carry passwords or signatures
func redactSensitiveURL(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i] + "?[REDACTED]"
	}
	return url
}

// Common error constructors

// NewInvalidInputError creates an error for a missing or malformed caller input
func NewInvalidInputError(message string) *LanzouError {
	return NewLanzouError(http.StatusBadRequest, message, ErrInvalidInput)
}

// NewParseFailureError creates an error for a mandatory page field that could not be extracted
func NewParseFailureError(message string) *LanzouError {
	return NewLanzouError(http.StatusBadRequest, message, ErrParseFailure)
}

// NewUpstreamRejectedError creates an error for a provider-side refusal
func NewUpstreamRejectedError(message string) *LanzouError {
	return NewLanzouError(http.StatusBadRequest, message, ErrUpstreamRejected)
}

// NewUpstreamTransportError creates an error for a network failure or an upstream error status.
// A zero status means the connection itself failed.
func NewUpstreamTransportError(status int, message string, cause error) *LanzouError {
	code := status
	if code == 0 {
		code = http.StatusBadGateway
	}
	return NewLanzouError(code, message, ErrUpstreamTransport).
		WithContext("upstream_status", status).
		WithCause(cause)
}

// NewStreamError creates an error for an I/O failure during relay
func NewStreamError(cause error) *LanzouError {
	return NewLanzouError(http.StatusInternalServerError, "Download stream interrupted", ErrStream).
		WithCause(cause)
}
