package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/infrastructure"
	"github.com/JaimeStill/marlin/internal/species"
	"github.com/JaimeStill/marlin/internal/vision"
	"github.com/JaimeStill/marlin/pkg/embedding"
	"github.com/JaimeStill/marlin/pkg/lifecycle"
	"github.com/JaimeStill/marlin/pkg/module"
	"github.com/JaimeStill/marlin/pkg/storage"
	"github.com/JaimeStill/marlin/pkg/vectorindex"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "species.csv")
	csv := "Fish Name,Physical Description,Scientific Name\nClownfish,Orange with white bands,Amphiprion ocellaris\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	return &config.Config{
		API: config.APIConfig{BasePath: "/api", MaxBodySize: "1MB"},
		Agent: gaconfig.AgentConfig{
			Name: "marlin-vision",
			Provider: &gaconfig.ProviderConfig{
				Name:    "ollama",
				BaseURL: "http://localhost:11434",
				Options: make(map[string]any),
			},
			Model: &gaconfig.ModelConfig{Name: "llava:13b"},
		},
		Storage: storage.Config{
			ContainerName:    "fish-image-bucket",
			ConnectionString: "DefaultEndpointsProtocol=http;AccountName=marlinstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/marlinstore;",
			MaxListSize:      500,
			MaxObjectSize:    "20MB",
		},
		Inference: vision.Config{Timeout: "60s", MaxConcurrent: 4},
		Embedding: embedding.Config{BaseURL: "http://localhost:11434/v1", Model: "nomic-embed-text", Timeout: "30s"},
		Search: vectorindex.Config{
			Backend:             vectorindex.BackendQdrant,
			Addresses:           []string{"http://localhost:6333"},
			Index:               "fish_index_v4",
			VectorField:         "physical_description_embedding",
			NameField:           "fish_name",
			DescriptionField:    "physical_description",
			ScientificNameField: "scientific_name",
			NumCandidates:       100,
			Timeout:             "30s",
		},
		Species:        species.Config{Path: path},
		Identification: config.IdentificationConfig{TopN: 5},
		Version:        "0.1.0",
	}
}

func newRouter(t *testing.T) (*module.Router, *infrastructure.Infrastructure) {
	t.Helper()

	cfg := testConfig(t)
	infra, err := infrastructure.New(cfg)
	require.NoError(t, err)

	modules, err := NewModules(infra, cfg)
	require.NoError(t, err)

	router := buildRouter(infra)
	modules.Mount(router)
	return router, infra
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestLive(t *testing.T) {
	router, _ := newRouter(t)

	rec := get(router, "/live")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	router, infra := newRouter(t)

	rec := get(router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready","checks":{"startup":false}}`, rec.Body.String())

	infra.Lifecycle.WaitForStartup()
	rec = get(router, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	infra.Lifecycle.Require("vision", lifecycle.ReadinessFunc(func() bool { return false }))
	rec = get(router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready","checks":{"startup":true,"vision":false}}`, rec.Body.String())
}

func TestAPIServedAtRootAndBasePath(t *testing.T) {
	router, _ := newRouter(t)

	for _, path := range []string{"/isGemini", "/api/isGemini"} {
		t.Run(path, func(t *testing.T) {
			rec := get(router, path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"USE_GEMINI":false,"use_alternate":false,"provider":"direct"}`, rec.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newRouter(t)

	get(router, "/isGemini")
	rec := get(router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
