package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultBaseDomain is the canonical domain every share link is rewritten onto
	DefaultBaseDomain = "https://www.lanzouf.com"

	// DefaultUserAgent is sent on every provider request unless overridden
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/72.0.3626.121 Safari/537.36"

	// EnvPrefix prefixes every environment variable read by LoadFromEnv
	EnvPrefix = "LANZOU"
)

// Config holds application configuration
type Config struct {
	BaseDomain     string
	UserAgent      string
	ProxyURL       string
	PageTimeout    int // seconds, single page or AJAX fetch
	SessionTimeout int // seconds, whole intermediate-resolution session
	RelayTimeout   int // seconds, relay connect-and-stream lifetime
	VerifyDelay    time.Duration

	// HTTP API
	ListenHost string
	ListenPort int

	// Logging configuration
	LogLevel    string
	EnableDebug bool
	QuietMode   bool
	LogFile     string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseDomain:     DefaultBaseDomain,
		UserAgent:      DefaultUserAgent,
		PageTimeout:    10,
		SessionTimeout: 30,
		RelayTimeout:   60,
		VerifyDelay:    2 * time.Second,

		ListenHost: "0.0.0.0",
		ListenPort: 8000,

		// Logging defaults
		LogLevel:    "info",
		EnableDebug: false,
		QuietMode:   false,
		LogFile:     "", // Empty means stderr
	}
}

// LoadFromEnv loads configuration from LANZOU_* environment variables
func (c *Config) LoadFromEnv() {
	c.loadFrom(newEnvViper())
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func (c *Config) loadFrom(v *viper.Viper) {
	v.SetDefault("base_domain", c.BaseDomain)
	v.SetDefault("user_agent", c.UserAgent)
	v.SetDefault("proxy", c.ProxyURL)
	v.SetDefault("page_timeout", c.PageTimeout)
	v.SetDefault("session_timeout", c.SessionTimeout)
	v.SetDefault("relay_timeout", c.RelayTimeout)
	v.SetDefault("host", c.ListenHost)
	v.SetDefault("port", c.ListenPort)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("debug", c.EnableDebug)
	v.SetDefault("quiet", c.QuietMode)
	v.SetDefault("log_file", c.LogFile)

	c.BaseDomain = strings.TrimRight(v.GetString("base_domain"), "/")
	c.UserAgent = v.GetString("user_agent")
	c.ProxyURL = v.GetString("proxy")
	c.PageTimeout = v.GetInt("page_timeout")
	c.SessionTimeout = v.GetInt("session_timeout")
	c.RelayTimeout = v.GetInt("relay_timeout")
	c.ListenHost = v.GetString("host")
	c.ListenPort = v.GetInt("port")
	c.LogLevel = v.GetString("log_level")
	c.EnableDebug = v.GetBool("debug")
	c.QuietMode = v.GetBool("quiet")
	c.LogFile = v.GetString("log_file")
}

// PageTimeoutDuration returns the per-request timeout for page and AJAX calls
func (c *Config) PageTimeoutDuration() time.Duration {
	return time.Duration(c.PageTimeout) * time.Second
}

// SessionTimeoutDuration returns the budget for one intermediate-resolution session
func (c *Config) SessionTimeoutDuration() time.Duration {
	return time.Duration(c.SessionTimeout) * time.Second
}

// RelayTimeoutDuration returns the relay's connect-and-stream lifetime
func (c *Config) RelayTimeoutDuration() time.Duration {
	return time.Duration(c.RelayTimeout) * time.Second
}

// ListenAddr returns host:port for the HTTP API
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.ListenPort)
}

// ValidateConfig validates the configuration values
func (c *Config) ValidateConfig() error {
	if c.BaseDomain == "" {
		return NewValidationError("base_domain", "base domain cannot be empty")
	}

	if !strings.HasPrefix(c.BaseDomain, "http://") && !strings.HasPrefix(c.BaseDomain, "https://") {
		return NewValidationErrorWithValue("base_domain", "must start with http:// or https://", c.BaseDomain)
	}

	if c.UserAgent == "" {
		return NewValidationError("user_agent", "user agent cannot be empty")
	}

	for field, value := range map[string]int{
		"page_timeout":    c.PageTimeout,
		"session_timeout": c.SessionTimeout,
		"relay_timeout":   c.RelayTimeout,
	} {
		if value < 1 {
			return NewValidationErrorWithValue(field, "must be > 0 seconds", value)
		}
	}

	if c.VerifyDelay < 0 {
		return NewValidationErrorWithValue("verify_delay", "cannot be negative", c.VerifyDelay)
	}

	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return NewValidationErrorWithValue("port", "must be between 1 and 65535", c.ListenPort).
			WithSuggestion("Use --port or LANZOU_PORT with a valid TCP port")
	}

	return nil
}
