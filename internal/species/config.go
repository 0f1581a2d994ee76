package species

import (
	"fmt"
	"os"
)

// Config locates the reference CSV.
type Config struct {
	Path string `toml:"path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Path string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Path == "" {
		c.Path = "Marine_Fish_Possible_Output.csv"
	}
	if env != nil && env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if c.Path == "" {
		return fmt.Errorf("path required")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
