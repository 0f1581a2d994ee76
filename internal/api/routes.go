package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Search.Handler().Routes(),
		domain.Selector.Handler().Routes(),
		domain.Identification.Handler().Routes(),
		newImagesHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize).routes(),
	}

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return fmt.Errorf("build openapi spec: %w", err)
	}

	routes.Register(mux, groups...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
