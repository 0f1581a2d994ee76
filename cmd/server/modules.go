package main

import (
	"net/http"

	"github.com/JaimeStill/marlin/internal/api"
	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/infrastructure"
	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount serves the API under its base path and at the root.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Root(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /live", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checks := infra.Lifecycle.Status()
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": checks,
			})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}
