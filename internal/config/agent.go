package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "MARLIN_AGENT_NAME"
	EnvAgentProviderName = "MARLIN_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "MARLIN_AGENT_BASE_URL"
	EnvAgentToken        = "MARLIN_AGENT_TOKEN"
	EnvAgentDeployment   = "MARLIN_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "MARLIN_AGENT_API_VERSION"
	EnvAgentAuthType     = "MARLIN_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "MARLIN_AGENT_MODEL_NAME"
)

// agentOptions maps provider option keys to the variables that set them.
var agentOptions = []struct{ key, env string }{
	{"token", EnvAgentToken},
	{"deployment", EnvAgentDeployment},
	{"api_version", EnvAgentAPIVersion},
	{"auth_type", EnvAgentAuthType},
}

// FinalizeAgent prepares the vision model's agent configuration. Defaults
// come from go-agents; secrets and endpoints usually arrive through the
// environment so config files stay shareable.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	ensureAgentSections(c)
	loadAgentEnv(c)

	if err := validateAgent(c); err != nil {
		return fmt.Errorf("vision agent: %w", err)
	}
	return nil
}

func ensureAgentSections(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if v := os.Getenv(EnvAgentName); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}
	for _, o := range agentOptions {
		if v := os.Getenv(o.env); v != "" {
			c.Provider.Options[o.key] = v
		}
	}
}

func validateAgent(c *gaconfig.AgentConfig) error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name required"))
	}
	if c.Provider.Name == "" {
		errs = append(errs, errors.New("provider name required"))
	}
	if c.Provider.BaseURL != "" {
		u, err := url.Parse(c.Provider.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid base_url %q", c.Provider.BaseURL))
		}
	}
	if c.Provider.Name == "azure" {
		if _, ok := c.Provider.Options["deployment"]; !ok {
			errs = append(errs, errors.New("azure provider requires a deployment option"))
		}
	}
	return errors.Join(errs...)
}
