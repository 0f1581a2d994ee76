package vectorindex

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendElasticsearch = "elasticsearch"
	BackendQdrant        = "qdrant"
)

// Config holds vector index connection and document schema settings.
// Index names the Elasticsearch index or the Qdrant collection.
type Config struct {
	Backend             string   `toml:"backend"`
	Addresses           []string `toml:"addresses"`
	Username            string   `toml:"username"`
	Password            string   `toml:"password"`
	APIKey              string   `toml:"api_key"`
	Index               string   `toml:"index"`
	VectorField         string   `toml:"vector_field"`
	NameField           string   `toml:"name_field"`
	DescriptionField    string   `toml:"description_field"`
	ScientificNameField string   `toml:"scientific_name_field"`
	NumCandidates       int      `toml:"num_candidates"`
	Timeout             string   `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
// Addresses is read as a comma-separated list.
type Env struct {
	Backend       string
	Addresses     string
	Username      string
	Password      string
	APIKey        string
	Index         string
	VectorField   string
	NumCandidates string
	Timeout       string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	c.loadAddressDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if len(overlay.Addresses) > 0 {
		c.Addresses = overlay.Addresses
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Index != "" {
		c.Index = overlay.Index
	}
	if overlay.VectorField != "" {
		c.VectorField = overlay.VectorField
	}
	if overlay.NameField != "" {
		c.NameField = overlay.NameField
	}
	if overlay.DescriptionField != "" {
		c.DescriptionField = overlay.DescriptionField
	}
	if overlay.ScientificNameField != "" {
		c.ScientificNameField = overlay.ScientificNameField
	}
	if overlay.NumCandidates != 0 {
		c.NumCandidates = overlay.NumCandidates
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendElasticsearch
	}
	if c.Index == "" {
		c.Index = "fish_index_v4"
	}
	if c.VectorField == "" {
		c.VectorField = "physical_description_embedding"
	}
	if c.NameField == "" {
		c.NameField = "fish_name"
	}
	if c.DescriptionField == "" {
		c.DescriptionField = "physical_description"
	}
	if c.ScientificNameField == "" {
		c.ScientificNameField = "scientific_name"
	}
	if c.NumCandidates == 0 {
		c.NumCandidates = 100
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadAddressDefaults() {
	if len(c.Addresses) > 0 {
		return
	}
	switch c.Backend {
	case BackendQdrant:
		c.Addresses = []string{"http://localhost:6333"}
	default:
		c.Addresses = []string{"http://localhost:9200"}
	}
}

func (c *Config) loadEnv(env *Env) error {
	str := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	str(env.Backend, &c.Backend)
	str(env.Username, &c.Username)
	str(env.Password, &c.Password)
	str(env.APIKey, &c.APIKey)
	str(env.Index, &c.Index)
	str(env.VectorField, &c.VectorField)
	str(env.Timeout, &c.Timeout)

	if env.Addresses != "" {
		if v := os.Getenv(env.Addresses); v != "" {
			c.Addresses = splitList(v)
		}
	}
	if env.NumCandidates != "" {
		if v := os.Getenv(env.NumCandidates); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", env.NumCandidates, v, err)
			}
			c.NumCandidates = n
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendElasticsearch, BackendQdrant:
	default:
		return fmt.Errorf("unsupported backend: %q", c.Backend)
	}
	if c.NumCandidates < 1 {
		return fmt.Errorf("num_candidates must be positive: %d", c.NumCandidates)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
