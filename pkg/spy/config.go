package spy

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Default configuration values.
const (
	DefaultHost            = "localhost"
	DefaultServiceThreads  = 1
	DefaultReadTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMaxBodyBytes    = 10 << 20
	DefaultMaxHistory      = 1000
)

// Config configures a Spy.
type Config struct {
	// Host is the interface to listen on.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port to listen on; 0 picks a free port.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Path is the prefix served by the plan, normalized to /x/ form.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ServiceThreads bounds how many requests are resolved concurrently.
	ServiceThreads int `json:"serviceThreads,omitempty" yaml:"serviceThreads,omitempty"`

	// H2C additionally accepts cleartext HTTP/2.
	H2C bool `json:"h2c,omitempty" yaml:"h2c,omitempty"`

	ReadTimeout     time.Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// MaxBodyBytes caps request bodies; larger requests get a 413.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`

	// MaxHistory caps the default request history.
	MaxHistory int `json:"maxHistory,omitempty" yaml:"maxHistory,omitempty"`
}

// DefaultConfig returns a configuration serving / on a free localhost port
// with a single worker.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Path:            "/",
		ServiceThreads:  DefaultServiceThreads,
		ReadTimeout:     DefaultReadTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		MaxHistory:      DefaultMaxHistory,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.ServiceThreads == 0 {
		c.ServiceThreads = d.ServiceThreads
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = d.MaxHistory
	}
	return c
}

// Validate checks c, after defaults have been applied.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host must not be blank", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 0 and 65535, got %d", ErrInvalidConfig, c.Port)
	}
	if _, err := NormalizePath(c.Path); err != nil {
		return err
	}
	if c.ServiceThreads <= 0 {
		return fmt.Errorf("%w: service threads must be positive, got %d", ErrInvalidConfig, c.ServiceThreads)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: max body bytes must not be negative", ErrInvalidConfig)
	}
	return nil
}

// NormalizePath turns a path prefix into /x/ form: "" and "/" become "/",
// "api" and "/api" become "/api/". Whitespace is rejected.
func NormalizePath(p string) (string, error) {
	if strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: path %q must not contain whitespace", ErrInvalidConfig, p)
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/", nil
	}
	return "/" + p + "/", nil
}
