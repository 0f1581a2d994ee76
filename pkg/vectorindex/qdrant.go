package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type qdrant struct {
	baseURL     string
	apiKey      string
	collection  string
	vectorField string
	client      *http.Client
}

func newQdrant(cfg *Config) (*qdrant, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("qdrant address required")
	}

	return &qdrant{
		baseURL:     strings.TrimRight(cfg.Addresses[0], "/"),
		apiKey:      cfg.APIKey,
		collection:  cfg.Index,
		vectorField: cfg.VectorField,
		client:      &http.Client{Timeout: cfg.TimeoutDuration()},
	}, nil
}

func (q *qdrant) Backend() string {
	return BackendQdrant
}

type qdrantPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func (p qdrantPoint) hit() Hit {
	return Hit{ID: fmt.Sprint(p.ID), Score: p.Score, Source: p.Payload}
}

// SearchVector queries the named vector configured as the vector field.
func (q *qdrant) SearchVector(ctx context.Context, vector []float64, k int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	var query any = vector
	if q.vectorField != "" {
		query = map[string]any{"name": q.vectorField, "vector": vector}
	}

	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}

	var resp struct {
		Result []qdrantPoint `json:"result"`
	}
	if err := q.post(ctx, "points/search", body, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, p := range resp.Result {
		hits = append(hits, p.hit())
	}
	return hits, nil
}

// Match is an exact payload match; matched points carry a score of 1.
func (q *qdrant) Match(ctx context.Context, field, value string, size int) ([]Hit, error) {
	body := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{"key": field, "match": map[string]any{"value": value}},
			},
		},
		"limit":        size,
		"with_payload": true,
		"with_vector":  false,
	}

	var resp struct {
		Result struct {
			Points []qdrantPoint `json:"points"`
		} `json:"result"`
	}
	if err := q.post(ctx, "points/scroll", body, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		h := p.hit()
		h.Score = 1
		hits = append(hits, h)
	}
	return hits, nil
}

func (q *qdrant) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/%s", q.baseURL, url.PathEscape(q.collection), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s failed: %s: %s", path, resp.Status, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
