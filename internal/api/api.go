// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/infrastructure"
	"github.com/JaimeStill/marlin/pkg/middleware"
	"github.com/JaimeStill/marlin/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.RequestID(),
		middleware.Logger(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.BodyLimit(cfg.API.MaxBodySizeBytes()),
	)

	return m, nil
}
