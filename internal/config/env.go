package config

import (
	"github.com/JaimeStill/marlin/internal/species"
	"github.com/JaimeStill/marlin/internal/vision"
	"github.com/JaimeStill/marlin/pkg/embedding"
	"github.com/JaimeStill/marlin/pkg/middleware"
	"github.com/JaimeStill/marlin/pkg/storage"
	"github.com/JaimeStill/marlin/pkg/vectorindex"
)

var storageEnv = &storage.Env{
	ContainerName:    "MARLIN_STORAGE_CONTAINER_NAME",
	ConnectionString: "MARLIN_STORAGE_CONNECTION_STRING",
	MaxListSize:      "MARLIN_STORAGE_MAX_LIST_SIZE",
	MaxObjectSize:    "MARLIN_STORAGE_MAX_OBJECT_SIZE",
}

var inferenceEnv = &vision.Env{
	Timeout:       "MARLIN_INFERENCE_TIMEOUT",
	MaxConcurrent: "MARLIN_INFERENCE_MAX_CONCURRENT",
}

var embeddingEnv = &embedding.Env{
	Dialect: "MARLIN_EMBEDDING_DIALECT",
	BaseURL: "MARLIN_EMBEDDING_BASE_URL",
	Model:   "MARLIN_EMBEDDING_MODEL",
	APIKey:  "MARLIN_EMBEDDING_API_KEY",
	Timeout: "MARLIN_EMBEDDING_TIMEOUT",
}

var searchEnv = &vectorindex.Env{
	Backend:       "MARLIN_SEARCH_BACKEND",
	Addresses:     "MARLIN_SEARCH_ADDRESSES",
	Username:      "MARLIN_SEARCH_USERNAME",
	Password:      "MARLIN_SEARCH_PASSWORD",
	APIKey:        "MARLIN_SEARCH_API_KEY",
	Index:         "MARLIN_SEARCH_INDEX",
	VectorField:   "MARLIN_SEARCH_VECTOR_FIELD",
	NumCandidates: "MARLIN_SEARCH_NUM_CANDIDATES",
	Timeout:       "MARLIN_SEARCH_TIMEOUT",
}

var speciesEnv = &species.Env{
	Path: "MARLIN_SPECIES_PATH",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "MARLIN_CORS_ENABLED",
	Origins:          "MARLIN_CORS_ORIGINS",
	AllowedMethods:   "MARLIN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "MARLIN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "MARLIN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "MARLIN_CORS_MAX_AGE",
}
