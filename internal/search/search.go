// Package search answers text queries against the fish knowledge base.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/pkg/vectorindex"
)

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Fields names the document fields the knowledge base stores.
type Fields struct {
	Name           string
	Description    string
	ScientificName string
}

// System defines the knowledge base operations.
type System interface {
	Handler() *Handler

	// Candidates embeds text and converts the nearest documents into a
	// candidate Set. Names outside the vocabulary are dropped.
	Candidates(ctx context.Context, text string) (candidates.Set, error)
	// Similar is Candidates ranked to the configured Top-N.
	Similar(ctx context.Context, text string) (candidates.RankedResult, error)
	// ScientificName returns the source document best matching name, if any.
	ScientificName(ctx context.Context, name string) ([]map[string]any, error)
}

type system struct {
	embedder Embedder
	index    vectorindex.Index
	fields   Fields
	vocab    candidates.Vocabulary
	topN     int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates the search System. Up to twice topN documents are requested
// from the index so duplicates and unknown names can be discarded without
// falling short of topN.
func New(
	embedder Embedder,
	index vectorindex.Index,
	fields Fields,
	vocab candidates.Vocabulary,
	topN int,
	m *metrics.Metrics,
	logger *slog.Logger,
) System {
	return &system{
		embedder: embedder,
		index:    index,
		fields:   fields,
		vocab:    vocab,
		topN:     topN,
		metrics:  m,
		logger:   logger.With("system", "search"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.metrics, s.logger)
}

func (s *system) Candidates(ctx context.Context, text string) (candidates.Set, error) {
	if strings.TrimSpace(text) == "" {
		return candidates.Set{}, stage.Wrap(stage.Embed, stage.ErrBadRequest, ErrEmptyText)
	}

	done := s.metrics.Time(stage.Embed)
	vector, err := s.embedder.Embed(ctx, text)
	done()
	if err != nil {
		return candidates.Set{}, stage.Wrap(stage.Embed, stage.ErrUpstreamUnavailable, err)
	}

	done = s.metrics.Time(stage.Search)
	hits, err := s.index.SearchVector(ctx, vector, s.depth())
	done()
	if err != nil {
		return candidates.Set{}, stage.Wrap(stage.Search, stage.ErrUpstreamUnavailable, err)
	}

	converted := make([]candidates.Hit, 0, len(hits))
	for _, h := range hits {
		converted = append(converted, candidates.Hit{
			Name:   h.Field(s.fields.Name),
			Score:  h.Score,
			Reason: h.Field(s.fields.Description),
		})
	}

	set := candidates.FromHits(converted, s.vocab)
	if len(set.Dropped) > 0 {
		s.logger.WarnContext(ctx, "search hits outside species catalog", "dropped", set.Dropped)
	}
	return set, nil
}

func (s *system) Similar(ctx context.Context, text string) (candidates.RankedResult, error) {
	set, err := s.Candidates(ctx, text)
	if err != nil {
		return candidates.RankedResult{}, err
	}
	return candidates.Rank(set, s.topN), nil
}

func (s *system) ScientificName(ctx context.Context, name string) ([]map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, stage.Wrap(stage.Search, stage.ErrBadRequest, ErrEmptyScientificName)
	}

	done := s.metrics.Time(stage.Search)
	hits, err := s.index.Match(ctx, s.fields.ScientificName, name, 1)
	done()
	if err != nil {
		return nil, stage.Wrap(stage.Search, stage.ErrUpstreamUnavailable, err)
	}

	docs := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		if h.Source != nil {
			docs = append(docs, h.Source)
		}
	}
	return docs, nil
}

func (s *system) depth() int {
	if s.topN <= 0 {
		return 10
	}
	return s.topN * 2
}
