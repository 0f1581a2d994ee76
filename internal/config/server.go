package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "MARLIN_SERVER_HOST"
	EnvServerPort              = "MARLIN_SERVER_PORT"
	EnvServerReadTimeout       = "MARLIN_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "MARLIN_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "MARLIN_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "MARLIN_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "MARLIN_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are duration
// strings; WriteTimeout must cover the slowest identification request,
// which chains an image download and one or two model calls.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`

	portEnv string
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.timeouts() {
		if v := *f.of(overlay); v != "" {
			*f.of(c) = v
		}
	}
}

type timeoutField struct {
	key, env, fallback string
	of                 func(*ServerConfig) *string
}

func (c *ServerConfig) timeouts() []timeoutField {
	return []timeoutField{
		{"read_timeout", EnvServerReadTimeout, "1m", func(s *ServerConfig) *string { return &s.ReadTimeout }},
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", func(s *ServerConfig) *string { return &s.ReadHeaderTimeout }},
		{"write_timeout", EnvServerWriteTimeout, "5m", func(s *ServerConfig) *string { return &s.WriteTimeout }},
		{"idle_timeout", EnvServerIdleTimeout, "2m", func(s *ServerConfig) *string { return &s.IdleTimeout }},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", func(s *ServerConfig) *string { return &s.ShutdownTimeout }},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, f := range c.timeouts() {
		if p := f.of(c); *p == "" {
			*p = f.fallback
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	c.portEnv = os.Getenv(EnvServerPort)
	if c.portEnv != "" {
		if port, err := strconv.Atoi(c.portEnv); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.timeouts() {
		if v := os.Getenv(f.env); v != "" {
			*f.of(c) = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.portEnv != "" {
		if _, err := strconv.Atoi(c.portEnv); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvServerPort, c.portEnv, err)
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.timeouts() {
		d, err := time.ParseDuration(*f.of(c))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s: must not be negative", f.key)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
