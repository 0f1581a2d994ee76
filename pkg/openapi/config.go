package openapi

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the document metadata published at /openapi.json.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	// ServerURL is the base URL clients should call. A relative "/" lets
	// viewers resolve against the host that served the document.
	ServerURL string `toml:"server_url"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.ServerURL != "" {
		c.ServerURL = overlay.ServerURL
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Marlin API"
	}
	if c.Description == "" {
		c.Description = "Fish species identification from stored images, backed by vision models and a vector knowledge base."
	}
	if c.ServerURL == "" {
		c.ServerURL = "/"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	override := func(name string, field *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	override(env.Title, &c.Title)
	override(env.Description, &c.Description)
	override(env.ServerURL, &c.ServerURL)
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.ServerURL, "/") && !strings.Contains(c.ServerURL, "://") {
		return fmt.Errorf("server_url must be absolute or start with /: %q", c.ServerURL)
	}
	return nil
}
