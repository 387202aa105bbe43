package internal

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// SecureLogger provides printf-style logging with sensitive data redaction
type SecureLogger struct {
	logger    *logrus.Logger
	level     LogLevel
	debug     bool
	quiet     bool
	redactors []Redactor
}

// Redactor defines an interface for redacting sensitive information
type Redactor interface {
	Redact(input string) string
}

// redactAfter replaces the value following every case-insensitive
// occurrence of each marker, up to the first terminator byte.
func redactAfter(input string, markers []string, terminators string) string {
	result := input
	for _, marker := range markers {
		from := 0
		for {
			index := indexFold(result[from:], marker)
			if index == -1 {
				break
			}
			start := from + index + len(marker)
			end := start
			for end < len(result) && !strings.ContainsRune(terminators, rune(result[end])) {
				end++
			}
			if end > start {
				result = result[:start] + redactedValue + result[end:]
				end = start + len(redactedValue)
			}
			from = end
		}
	}
	return result
}

// indexFold is a byte-offset strings.Index that ignores ASCII case
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

const redactedValue = "[REDACTED]"

// CookieRedactor redacts cookie values from strings
type CookieRedactor struct{}

func (r *CookieRedactor) Redact(input string) string {
	return redactAfter(input, []string{
		"acw_sc__v2=",
		"down_ip=",
		"Cookie:",
		"Set-Cookie:",
	}, " ;\n\r")
}

// URLRedactor redacts share passwords and signed parameters
type URLRedactor struct{}

func (r *URLRedactor) Redact(input string) string {
	return redactAfter(input, []string{
		"pwd=",
		"sign=",
		"pid=",
		"websignkey=",
	}, "& \n")
}

// SecretRedactor hides one literal secret, such as proxy credentials
type SecretRedactor struct {
	Secret string
}

func (r *SecretRedactor) Redact(input string) string {
	if r.Secret == "" {
		return input
	}
	return strings.ReplaceAll(input, r.Secret, redactedValue)
}

// NewSecureLogger creates a new secure logger writing to output
func NewSecureLogger(output io.Writer, level LogLevel, debug, quiet bool) *SecureLogger {
	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05",
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	// Filtering happens in shouldLog so quiet mode can override the level.
	logger.SetLevel(logrus.DebugLevel)

	return &SecureLogger{
		logger: logger,
		level:  level,
		debug:  debug,
		quiet:  quiet,
		redactors: []Redactor{
			&CookieRedactor{},
			&URLRedactor{},
		},
	}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger(debug, quiet bool) *SecureLogger {
	level := LogLevelInfo
	if debug {
		level = LogLevelDebug
	}
	if quiet {
		level = LogLevelError
	}

	return NewSecureLogger(os.Stderr, level, debug, quiet)
}

func (sl *SecureLogger) redactSensitiveData(input string) string {
	result := input
	for _, redactor := range sl.redactors {
		result = redactor.Redact(result)
	}
	return result
}

// entry attaches caller information in debug mode
func (sl *SecureLogger) entry() *logrus.Entry {
	e := logrus.NewEntry(sl.logger)
	if !sl.debug {
		return e
	}
	for depth := 3; depth <= 5; depth++ {
		_, file, line, ok := runtime.Caller(depth)
		if ok && !strings.HasSuffix(file, "logger.go") && !strings.HasSuffix(file, "log.go") {
			parts := strings.Split(file, "/")
			return e.WithField("caller", fmt.Sprintf("%s:%d", parts[len(parts)-1], line))
		}
	}
	return e
}

func (sl *SecureLogger) shouldLog(level LogLevel) bool {
	if sl.quiet && level > LogLevelError {
		return false
	}
	return level <= sl.level
}

func (sl *SecureLogger) log(level LogLevel, format string, args ...interface{}) {
	if !sl.shouldLog(level) {
		return
	}
	message := sl.redactSensitiveData(fmt.Sprintf(format, args...))
	sl.entry().Log(level.logrusLevel(), message)
}

// Error logs an error message
func (sl *SecureLogger) Error(format string, args ...interface{}) {
	sl.log(LogLevelError, format, args...)
}

// Warn logs a warning message
func (sl *SecureLogger) Warn(format string, args ...interface{}) {
	sl.log(LogLevelWarn, format, args...)
}

// Info logs an info message
func (sl *SecureLogger) Info(format string, args ...interface{}) {
	sl.log(LogLevelInfo, format, args...)
}

// Debug logs a debug message
func (sl *SecureLogger) Debug(format string, args ...interface{}) {
	sl.log(LogLevelDebug, format, args...)
}

// LogHTTPRequest logs an outgoing request with sensitive headers redacted
func (sl *SecureLogger) LogHTTPRequest(method, url string, header http.Header) {
	if !sl.shouldLog(LogLevelDebug) {
		return
	}
	sl.Debug("HTTP Request: %s %s Headers: %v", method, url, sl.sanitizeHeaders(header))
}

// LogHTTPResponse logs a response status with sensitive headers redacted
func (sl *SecureLogger) LogHTTPResponse(status int, url string, header http.Header) {
	if !sl.shouldLog(LogLevelDebug) {
		return
	}
	sl.Debug("HTTP Response: %d %s Headers: %v", status, url, sl.sanitizeHeaders(header))
}

func (sl *SecureLogger) sanitizeHeaders(header http.Header) map[string]string {
	sanitized := make(map[string]string, len(header))
	for name, values := range header {
		if sl.isSensitiveHeader(name) {
			sanitized[name] = redactedValue
		} else {
			sanitized[name] = strings.Join(values, ", ")
		}
	}
	return sanitized
}

func (sl *SecureLogger) isSensitiveHeader(name string) bool {
	sensitiveHeaders := []string{
		"authorization",
		"cookie",
		"set-cookie",
		"x-forwarded-for",
		"client-ip",
	}

	lowerName := strings.ToLower(name)
	for _, sensitive := range sensitiveHeaders {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// AddRedactor adds a custom redactor
func (sl *SecureLogger) AddRedactor(redactor Redactor) {
	sl.redactors = append(sl.redactors, redactor)
}
