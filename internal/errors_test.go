package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanzouError_Error(t *testing.T) {
	err := NewLanzouError(400, "Failed to parse page parameters", ErrParseFailure)

	result := err.Error()

	assert.Contains(t, result, "lanzou error")
	assert.Contains(t, result, "400")
	assert.Contains(t, result, "ParseFailure")
	assert.Contains(t, result, "Failed to parse page parameters")
}

func TestLanzouError_DetailedError(t *testing.T) {
	err := NewUpstreamRejectedError("Incorrect password").
		WithURL("https://www.lanzouf.com/filemoreajax.php?file=4821&pwd=1234").
		WithContext("zt", 3)

	result := err.DetailedError()

	assert.Contains(t, result, "WARNING")
	assert.Contains(t, result, "UpstreamRejected Error")
	assert.Contains(t, result, "Code: 400")
	assert.Contains(t, result, "Incorrect password")
	assert.Contains(t, result, "zt=3")
	assert.Contains(t, result, "Suggestion:")

	// Query strings may carry the share password
	assert.Contains(t, result, "www.lanzouf.com/filemoreajax.php")
	assert.NotContains(t, result, "pwd=1234")
}

func TestLanzouError_Constructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *LanzouError
		code     int
		errType  ErrorType
		severity ErrorSeverity
	}{
		{"invalid_input", NewInvalidInputError("Please provide a URL"), http.StatusBadRequest, ErrInvalidInput, SeverityWarning},
		{"parse_failure", NewParseFailureError("Failed to find iframe link"), http.StatusBadRequest, ErrParseFailure, SeverityError},
		{"rejected", NewUpstreamRejectedError("Unknown error"), http.StatusBadRequest, ErrUpstreamRejected, SeverityWarning},
		{"transport_status", NewUpstreamTransportError(503, "Upstream download failed", nil), 503, ErrUpstreamTransport, SeverityError},
		{"transport_dial", NewUpstreamTransportError(0, "request failed", cause), http.StatusBadGateway, ErrUpstreamTransport, SeverityError},
		{"stream", NewStreamError(cause), http.StatusInternalServerError, ErrStream, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.severity, tt.err.Severity)
			assert.NotEmpty(t, tt.err.Suggestion)
		})
	}
}

func TestLanzouError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewStreamError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestAsLanzouError(t *testing.T) {
	base := NewParseFailureError("Failed to parse folder uid")
	wrapped := fmt.Errorf("resolve: %w", base)

	le, ok := AsLanzouError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, le)

	assert.True(t, IsType(wrapped, ErrParseFailure))
	assert.False(t, IsType(wrapped, ErrUpstreamRejected))

	_, ok = AsLanzouError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsType(nil, ErrStream))
}

func TestNewUpstreamTransportError_RecordsStatus(t *testing.T) {
	err := NewUpstreamTransportError(404, "Upstream download failed", nil)

	assert.Equal(t, 404, err.Context["upstream_status"])
	assert.Contains(t, err.Suggestion, "network")

	serverErr := NewUpstreamTransportError(502, "Upstream download failed", nil)
	assert.Contains(t, serverErr.Suggestion, "server error")
}

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrInvalidInput, "InvalidInput"},
		{ErrParseFailure, "ParseFailure"},
		{ErrUpstreamRejected, "UpstreamRejected"},
		{ErrUpstreamTransport, "UpstreamTransportError"},
		{ErrStream, "StreamError"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errorType.String())
		})
	}
}

func TestErrorSeverity_String(t *testing.T) {
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "UNKNOWN", ErrorSeverity(999).String())
}

func TestValidationError(t *testing.T) {
	err := NewValidationErrorWithValue("port", "must be between 1 and 65535", 70000).
		WithSuggestion("Use a valid port").
		WithContext("source", "flag")

	assert.Equal(t, "validation error for port: must be between 1 and 65535 - Suggestion: Use a valid port", err.Error())

	detailed := err.DetailedError()
	assert.Contains(t, detailed, "Validation Error for field 'port'")
	assert.Contains(t, detailed, "Provided value: 70000")
	assert.Contains(t, detailed, "source=flag")
	assert.True(t, strings.HasSuffix(detailed, "Suggestion: Use a valid port"))
}
