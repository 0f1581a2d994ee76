// Package providers implements the two interchangeable candidate sources:
// direct vision-model candidates and caption-then-search.
package providers

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/internal/vision"
)

const (
	NameDirect        = "direct"
	NameCaptionSearch = "caption_search"
)

// Output is a provider's normalized answer for one image. Caption is set
// only by providers that caption the image.
type Output struct {
	Caption string
	Set     candidates.Set
}

// Provider turns an image into a normalized candidate set.
type Provider interface {
	Name() string
	Candidates(ctx context.Context, img vision.Image) (Output, error)
}

// Searcher resolves caption text into candidates.
type Searcher interface {
	Candidates(ctx context.Context, text string) (candidates.Set, error)
}

// Direct asks the vision model for a candidate list and normalizes its reply.
type Direct struct {
	model   vision.Model
	vocab   candidates.Vocabulary
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDirect creates a Direct provider.
func NewDirect(model vision.Model, vocab candidates.Vocabulary, m *metrics.Metrics, logger *slog.Logger) *Direct {
	return &Direct{
		model:   model,
		vocab:   vocab,
		metrics: m,
		logger:  logger.With("provider", NameDirect),
	}
}

func (d *Direct) Name() string {
	return NameDirect
}

func (d *Direct) Candidates(ctx context.Context, img vision.Image) (Output, error) {
	done := d.metrics.Time(stage.Candidates)
	raw, err := d.model.Candidates(ctx, img)
	done()
	if err != nil {
		return Output{}, stage.Wrap(stage.Candidates, stage.ErrUpstreamUnavailable, err)
	}

	set, err := candidates.Normalize(raw, d.vocab)
	if err != nil {
		d.logger.WarnContext(ctx, "candidate output rejected", "error", err, "raw", snippet(raw))
		return Output{}, stage.Wrap(stage.Normalize, stage.ErrMalformedOutput, err)
	}

	if len(set.Dropped) > 0 {
		d.logger.WarnContext(ctx, "candidates outside species catalog", "dropped", set.Dropped)
	}
	return Output{Set: set}, nil
}

// CaptionSearch captions the image and searches the knowledge base with
// the caption.
type CaptionSearch struct {
	model    vision.Model
	searcher Searcher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewCaptionSearch creates a CaptionSearch provider.
func NewCaptionSearch(model vision.Model, searcher Searcher, m *metrics.Metrics, logger *slog.Logger) *CaptionSearch {
	return &CaptionSearch{
		model:    model,
		searcher: searcher,
		metrics:  m,
		logger:   logger.With("provider", NameCaptionSearch),
	}
}

func (c *CaptionSearch) Name() string {
	return NameCaptionSearch
}

func (c *CaptionSearch) Candidates(ctx context.Context, img vision.Image) (Output, error) {
	done := c.metrics.Time(stage.Caption)
	caption, err := c.model.Caption(ctx, img)
	done()
	if err != nil {
		return Output{}, stage.Wrap(stage.Caption, stage.ErrUpstreamUnavailable, err)
	}

	set, err := c.searcher.Candidates(ctx, caption)
	if err != nil {
		return Output{Caption: caption}, err
	}
	return Output{Caption: caption, Set: set}, nil
}

// Pair holds the primary and alternate providers.
type Pair struct {
	Primary   Provider
	Alternate Provider
}

// Pick returns Alternate when alternate is true, Primary otherwise.
func (p Pair) Pick(alternate bool) Provider {
	if alternate {
		return p.Alternate
	}
	return p.Primary
}

func snippet(s string) string {
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
