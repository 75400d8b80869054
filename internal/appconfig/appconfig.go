// Package appconfig manages loading and interpreting gateway configuration.
package appconfig

import (
	"strings"
	"time"

	"github.com/craftstudio/craftstudio-mcp/payment"
)

const (
	// DefaultBaseURL is the production backend endpoint.
	DefaultBaseURL = "https://api.craftstudio.dev"
	// defaultRequestTimeout is the default timeout for backend HTTP requests.
	defaultRequestTimeout = 120 * time.Second
)

// Config represents the merged gateway configuration. Precedence is
// flags over environment over config file over defaults; the merge
// happens in the cli package, this type is the stable snapshot other
// packages consume.
type Config struct {
	APIKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeout"`
	AuditDB        string `mapstructure:"auditDb"`
	Debug          int    `mapstructure:"debug"`
	TopUpURL       string `mapstructure:"topUpUrl"`
	ConfigPath     string `mapstructure:"-"`
}

// BackendURL returns the backend base URL, falling back to the production
// endpoint if not specified.
func (c Config) BackendURL() string {
	if url := strings.TrimSpace(c.BaseURL); url != "" {
		return strings.TrimRight(url, "/")
	}
	return DefaultBaseURL
}

// RequestTimeout returns the timeout duration for backend HTTP requests,
// falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AuditDBPath returns the path of the SQLite invocation log, or empty
// when auditing should stay in memory.
func (c Config) AuditDBPath() string {
	return strings.TrimSpace(c.AuditDB)
}

// Payments returns the payment recovery settings, applying any configured
// top-up URL override on top of the defaults.
func (c Config) Payments() payment.Config {
	cfg := payment.DefaultConfig()
	if url := strings.TrimSpace(c.TopUpURL); url != "" {
		cfg.TopUpURL = url
	}
	return cfg
}
