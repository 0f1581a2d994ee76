package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/marlin/pkg/formatting"
	"github.com/JaimeStill/marlin/pkg/middleware"
	"github.com/JaimeStill/marlin/pkg/openapi"
)

const (
	EnvAPIBasePath    = "MARLIN_API_BASE_PATH"
	EnvAPIMaxBodySize = "MARLIN_API_MAX_BODY_SIZE"
	EnvAPIAdminToken  = "MARLIN_API_ADMIN_TOKEN"
)

var openapiEnv = &openapi.ConfigEnv{
	Title:       "MARLIN_OPENAPI_TITLE",
	Description: "MARLIN_OPENAPI_DESCRIPTION",
	ServerURL:   "MARLIN_OPENAPI_SERVER_URL",
}

// APIConfig holds API routing, request limits, CORS, and documentation
// settings. An empty AdminToken leaves /changeModel open.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	AdminToken  string                `toml:"admin_token"`
	CORS        middleware.CORSConfig `toml:"cors"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1 << 20
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	if overlay.AdminToken != "" {
		c.AdminToken = overlay.AdminToken
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
	if v := os.Getenv(EnvAPIAdminToken); v != "" {
		c.AdminToken = v
	}
}

func (c *APIConfig) validate() error {
	if len(c.BasePath) < 2 || !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("base_path must be a single-level path: %q", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
