package api

import (
	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/infrastructure"
	"github.com/JaimeStill/marlin/internal/search"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	TopN         int
	UseAlternate bool
	AdminToken   string
	MaxListSize  int32
	Fields       search.Fields
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		TopN:           cfg.Identification.TopN,
		UseAlternate:   cfg.Identification.UseAlternate,
		AdminToken:     cfg.API.AdminToken,
		MaxListSize:    cfg.Storage.MaxListSize,
		Fields: search.Fields{
			Name:           cfg.Search.NameField,
			Description:    cfg.Search.DescriptionField,
			ScientificName: cfg.Search.ScientificNameField,
		},
	}
}
