package apiclient

import (
	"fmt"
	"time"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultRetries    = 2
	defaultBackoff    = 200 * time.Millisecond
	defaultMaxBackoff = 500 * time.Millisecond
)

// NoRetries disables retries entirely (a single attempt per call).
// Needed because a zero Retries value means "use the default".
const NoRetries = -1

// Config configures the API client.
type Config struct {
	// BaseURL is the base URL prepended to all request paths. Required.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each individual attempt. Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retries is the number of extra attempts after the first, applied
	// only to transport-level failures. Defaults to 2; use NoRetries
	// for a single attempt.
	Retries int `yaml:"retries" mapstructure:"retries"`

	// Backoff is the base delay for the exponential backoff between
	// failed attempts. Defaults to 200ms.
	Backoff time.Duration `yaml:"backoff" mapstructure:"backoff"`

	// MaxBackoff caps the backoff growth. Defaults to 500ms.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth supplies authentication headers. Nil disables auth.
	Auth AuthStrategy `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	} else if c.Retries < 0 {
		c.Retries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("apiclient: base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("apiclient: timeout must be positive")
	}
	if c.Backoff <= 0 || c.MaxBackoff <= 0 {
		return fmt.Errorf("apiclient: backoff and max backoff must be positive")
	}
	return nil
}
