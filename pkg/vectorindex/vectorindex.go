// Package vectorindex queries a document index by embedding similarity or
// by field match. Elasticsearch and Qdrant backends are provided.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrEmptyVector indicates a similarity query with no vector.
var ErrEmptyVector = errors.New("query vector is empty")

// Hit is one matched document.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// Field returns the string value of a source field, or "" when absent.
func (h Hit) Field(name string) string {
	switch v := h.Source[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Index is the query surface shared by all backends.
type Index interface {
	// Backend names the implementation.
	Backend() string
	// SearchVector returns up to k nearest documents to vector, most similar first.
	SearchVector(ctx context.Context, vector []float64, k int) ([]Hit, error)
	// Match returns up to size documents whose field matches value.
	Match(ctx context.Context, field, value string, size int) ([]Hit, error)
}

// New creates the Index for cfg.Backend.
func New(cfg *Config) (Index, error) {
	switch cfg.Backend {
	case BackendElasticsearch:
		return newElasticsearch(cfg)
	case BackendQdrant:
		return newQdrant(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Backend)
	}
}
