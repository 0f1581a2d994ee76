package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvIdentificationTopN         = "MARLIN_IDENTIFICATION_TOP_N"
	EnvIdentificationUseAlternate = "MARLIN_IDENTIFICATION_USE_ALTERNATE"
)

// IdentificationConfig holds ranking depth and the provider selected at
// startup. UseAlternate starts the service on the caption search provider.
type IdentificationConfig struct {
	TopN         int  `toml:"top_n"`
	UseAlternate bool `toml:"use_alternate"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IdentificationConfig) Finalize() error {
	if c.TopN == 0 {
		c.TopN = 5
	}

	if v := os.Getenv(EnvIdentificationTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvIdentificationTopN, v, err)
		}
		c.TopN = n
	}
	if v := os.Getenv(EnvIdentificationUseAlternate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvIdentificationUseAlternate, v, err)
		}
		c.UseAlternate = b
	}

	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1: %d", c.TopN)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *IdentificationConfig) Merge(overlay *IdentificationConfig) {
	if overlay.TopN != 0 {
		c.TopN = overlay.TopN
	}
	if overlay.UseAlternate {
		c.UseAlternate = true
	}
}
