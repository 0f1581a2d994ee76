package storage

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/marlin/pkg/formatting"
)

// MaxListCap is the largest page size accepted by the blob listing API.
const MaxListCap int32 = 5000

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
	MaxObjectSize    string `toml:"max_object_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
	MaxObjectSize    string
}

// MaxObjectSizeBytes returns MaxObjectSize in bytes.
func (c *Config) MaxObjectSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxObjectSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
	if overlay.MaxObjectSize != "" {
		c.MaxObjectSize = overlay.MaxObjectSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "fish-image-bucket"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 500
	}
	if c.MaxListSize > MaxListCap {
		c.MaxListSize = MaxListCap
	}
	if c.MaxObjectSize == "" {
		c.MaxObjectSize = "20MB"
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.MaxListSize != "" {
		if v := os.Getenv(env.MaxListSize); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid %s %q: want a positive integer", env.MaxListSize, v)
			}
			c.MaxListSize = int32(min(n, int(MaxListCap)))
		}
	}
	if env.MaxObjectSize != "" {
		if v := os.Getenv(env.MaxObjectSize); v != "" {
			c.MaxObjectSize = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if _, err := formatting.ParseBytes(c.MaxObjectSize); err != nil {
		return fmt.Errorf("invalid max_object_size: %w", err)
	}
	return nil
}
