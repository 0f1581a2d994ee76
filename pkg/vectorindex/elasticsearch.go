package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type elastic struct {
	client        *elasticsearch.Client
	index         string
	vectorField   string
	numCandidates int
	timeout       time.Duration
}

func newElasticsearch(cfg *Config) (*elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &elastic{
		client:        client,
		index:         cfg.Index,
		vectorField:   cfg.VectorField,
		numCandidates: cfg.NumCandidates,
		timeout:       cfg.TimeoutDuration(),
	}, nil
}

func (e *elastic) Backend() string {
	return BackendElasticsearch
}

func (e *elastic) SearchVector(ctx context.Context, vector []float64, k int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	body := map[string]any{
		"knn": map[string]any{
			"field":          e.vectorField,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": max(e.numCandidates, k),
		},
		"size":    k,
		"_source": map[string]any{"excludes": []string{e.vectorField}},
	}
	return e.search(ctx, body)
}

func (e *elastic) Match(ctx context.Context, field, value string, size int) ([]Hit, error) {
	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{field: value},
		},
		"size":    size,
		"_source": map[string]any{"excludes": []string{e.vectorField}},
	}
	return e.search(ctx, body)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  *float64       `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *elastic) search(ctx context.Context, body map[string]any) ([]Hit, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("elasticsearch search %s: %s: %s", e.index, res.Status(), bytes.TrimSpace(detail))
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		hit := Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
