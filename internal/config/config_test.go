package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/marlin/internal/config"
)

const baseConfig = `
shutdown_timeout = "20s"
version = "0.2.0"

[server]
port = 8080
write_timeout = "2m"

[api]
base_path = "/api"
max_body_size = "2MB"

[storage]
container_name = "fish-image-bucket"
connection_string = "DefaultEndpointsProtocol=http;AccountName=marlinstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/marlinstore;"

[agent]
name = "marlin-vision"

[agent.provider]
name = "ollama"

[agent.model]
name = "llava:13b"

[inference]
timeout = "45s"
max_concurrent = 2

[search]
backend = "elasticsearch"
addresses = ["http://es:9200"]
index = "fish_index_v4"

[species]
path = "data/species.csv"

[identification]
top_n = 5
`

const overlayConfig = `
[server]
port = 9090

[identification]
use_alternate = true
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("shutdown timeout: got %s, want 20s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Version != "0.2.0" {
		t.Errorf("version: got %s, want 0.2.0", cfg.Version)
	}
	if cfg.Server.WriteTimeoutDuration() != 2*time.Minute {
		t.Errorf("write timeout: got %s, want 2m", cfg.Server.WriteTimeoutDuration())
	}
	if cfg.API.MaxBodySizeBytes() != 2*1024*1024 {
		t.Errorf("max body size: got %d", cfg.API.MaxBodySizeBytes())
	}
	if cfg.Agent.Name != "marlin-vision" {
		t.Errorf("agent name: got %s", cfg.Agent.Name)
	}
	if cfg.Agent.Model == nil || cfg.Agent.Model.Name != "llava:13b" {
		t.Errorf("agent model: got %+v", cfg.Agent.Model)
	}
	if cfg.Inference.MaxConcurrent != 2 {
		t.Errorf("inference max concurrent: got %d, want 2", cfg.Inference.MaxConcurrent)
	}
	if len(cfg.Search.Addresses) != 1 || cfg.Search.Addresses[0] != "http://es:9200" {
		t.Errorf("search addresses: got %v", cfg.Search.Addresses)
	}
	if cfg.Species.Path != "data/species.csv" {
		t.Errorf("species path: got %s", cfg.Species.Path)
	}
	if cfg.Identification.TopN != 5 || cfg.Identification.UseAlternate {
		t.Errorf("identification: got %+v", cfg.Identification)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `
[storage]
connection_string = "conn"

[agent]
name = "marlin-vision"

[agent.provider]
name = "ollama"
`)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server host", cfg.Server.Host, "0.0.0.0"},
		{"server port", cfg.Server.Port, 8080},
		{"server write timeout", cfg.Server.WriteTimeout, "5m"},
		{"api base path", cfg.API.BasePath, "/api"},
		{"api max body size", cfg.API.MaxBodySize, "1MB"},
		{"api admin token", cfg.API.AdminToken, ""},
		{"storage container", cfg.Storage.ContainerName, "fish-image-bucket"},
		{"embedding model", cfg.Embedding.Model, "text-embedding-3-small"},
		{"search backend", cfg.Search.Backend, "elasticsearch"},
		{"search index", cfg.Search.Index, "fish_index_v4"},
		{"species path", cfg.Species.Path, "Marine_Fish_Possible_Output.csv"},
		{"top n", cfg.Identification.TopN, 5},
		{"use alternate", cfg.Identification.UseAlternate, false},
		{"shutdown timeout", cfg.ShutdownTimeout, "30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	t.Chdir(dir)
	t.Setenv(config.EnvMarlinEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Identification.UseAlternate {
		t.Error("overlay use_alternate not applied")
	}
	if cfg.Inference.MaxConcurrent != 2 {
		t.Errorf("base inference lost: got %d", cfg.Inference.MaxConcurrent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	t.Setenv("MARLIN_SERVER_PORT", "7070")
	t.Setenv(config.EnvAPIAdminToken, "s3cret")
	t.Setenv(config.EnvIdentificationTopN, "3")
	t.Setenv(config.EnvIdentificationUseAlternate, "true")
	t.Setenv("MARLIN_SEARCH_BACKEND", "qdrant")
	t.Setenv("MARLIN_SEARCH_ADDRESSES", "http://q1:6333, http://q2:6333")
	t.Setenv("MARLIN_EMBEDDING_API_KEY", "sk-test")
	t.Setenv(config.EnvAgentModelName, "gemini-2.0-flash")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server port: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.API.AdminToken != "s3cret" {
		t.Errorf("admin token: got %q", cfg.API.AdminToken)
	}
	if cfg.Identification.TopN != 3 || !cfg.Identification.UseAlternate {
		t.Errorf("identification: got %+v", cfg.Identification)
	}
	if cfg.Search.Backend != "qdrant" {
		t.Errorf("search backend: got %s", cfg.Search.Backend)
	}
	if strings.Join(cfg.Search.Addresses, ",") != "http://q1:6333,http://q2:6333" {
		t.Errorf("search addresses: got %v", cfg.Search.Addresses)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("embedding api key: got %q", cfg.Embedding.APIKey)
	}
	if cfg.Agent.Model.Name != "gemini-2.0-flash" {
		t.Errorf("agent model: got %s", cfg.Agent.Model.Name)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing connection string",
			content: "[agent]\nname = \"a\"\n[agent.provider]\nname = \"ollama\"\n",
			wantErr: "storage",
		},
		{
			name:    "bad top n",
			content: baseConfig + "\n",
			wantErr: "identification",
		},
		{
			name:    "bad shutdown timeout",
			content: strings.Replace(baseConfig, `shutdown_timeout = "20s"`, `shutdown_timeout = "soon"`, 1),
			wantErr: "shutdown_timeout",
		},
		{
			name:    "multi-level base path",
			content: strings.Replace(baseConfig, `base_path = "/api"`, `base_path = "/api/v1"`, 1),
			wantErr: "base_path",
		},
		{
			name:    "unknown search backend",
			content: strings.Replace(baseConfig, `backend = "elasticsearch"`, `backend = "solr"`, 1),
			wantErr: "search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.content)
			t.Chdir(dir)
			if tt.name == "bad top n" {
				t.Setenv(config.EnvIdentificationTopN, "-1")
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestIdentificationMalformedEnv(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{config.EnvIdentificationTopN, "five"},
		{config.EnvIdentificationUseAlternate, "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			var c config.IdentificationConfig
			err := c.Finalize()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.env) {
				t.Errorf("error %q does not name %s", err, tt.env)
			}
		})
	}
}

func TestMergePreservesUnset(t *testing.T) {
	base := config.Config{
		Version: "1.0.0",
		API:     config.APIConfig{BasePath: "/api", AdminToken: "a"},
		Identification: config.IdentificationConfig{
			TopN: 5,
		},
	}

	base.Merge(&config.Config{
		API:            config.APIConfig{AdminToken: "b"},
		Identification: config.IdentificationConfig{TopN: 10},
	})

	if base.Version != "1.0.0" {
		t.Errorf("version: got %s", base.Version)
	}
	if base.API.BasePath != "/api" || base.API.AdminToken != "b" {
		t.Errorf("api: got %+v", base.API)
	}
	if base.Identification.TopN != 10 {
		t.Errorf("top n: got %d", base.Identification.TopN)
	}
}
