// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, metrics, storage, models,
// knowledge base) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/species"
	"github.com/JaimeStill/marlin/internal/vision"
	"github.com/JaimeStill/marlin/pkg/embedding"
	"github.com/JaimeStill/marlin/pkg/lifecycle"
	"github.com/JaimeStill/marlin/pkg/storage"
	"github.com/JaimeStill/marlin/pkg/vectorindex"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, metrics, image storage, the species catalog, the vision model,
// and the knowledge base clients.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Storage   storage.System
	Catalog   *species.Catalog
	Model     vision.Model
	Embedder  *embedding.Client
	Index     vectorindex.Index
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// A missing or empty species catalog fails startup.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	catalog, err := species.Load(cfg.Species.Path)
	if err != nil {
		return nil, fmt.Errorf("species catalog init failed: %w", err)
	}

	model, err := vision.New(cfg.Agent, &cfg.Inference, catalog.All(), logger)
	if err != nil {
		return nil, fmt.Errorf("vision model init failed: %w", err)
	}

	index, err := vectorindex.New(&cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("vector index init failed: %w", err)
	}

	logger.Info(
		"infrastructure initialized",
		"species", catalog.Len(),
		"search_backend", index.Backend(),
		"agent_provider", cfg.Agent.Provider.Name,
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Metrics:   metrics.New(),
		Storage:   store,
		Catalog:   catalog,
		Model:     model,
		Embedder:  embedding.New(&cfg.Embedding),
		Index:     index,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Storage hooks are registered for startup and readiness coordination.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
