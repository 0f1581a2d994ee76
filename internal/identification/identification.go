// Package identification orchestrates the image routes: fetch the image,
// consult a model or the knowledge base, normalize, rank, and assemble the
// response. Each request runs its own state graph.
package identification

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/providers"
	"github.com/JaimeStill/marlin/internal/vision"
)

// ImageStore reads image bytes by object key.
type ImageStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Searcher ranks knowledge base entries by similarity to text.
type Searcher interface {
	Similar(ctx context.Context, text string) (candidates.RankedResult, error)
}

// Switch reports which provider is selected.
type Switch interface {
	Alternate() bool
}

// Runtime bundles the dependencies the pipeline nodes require.
type Runtime struct {
	Images    ImageStore
	Model     vision.Model
	Search    Searcher
	Providers providers.Pair
	Selector  Switch
	Vocab     candidates.Vocabulary
	TopN      int
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// System defines the identification operations. The image operations are
// keyed by an image object key; Generate is text only.
type System interface {
	Handler() *Handler

	Caption(ctx context.Context, key string) (CaptionResult, error)
	Details(ctx context.Context, key string) (DetailsResult, error)
	IdentifyAndSearch(ctx context.Context, key string) (IdentifyResult, error)
	PossibleFish(ctx context.Context, key string) (candidates.RankedResult, error)
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

type system struct {
	rt *Runtime
}

// New creates the identification System.
func New(rt *Runtime) System {
	rt.Logger = rt.Logger.With("system", "identification")
	return &system{rt: rt}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.rt.Metrics, s.rt.Logger)
}

func (s *system) Caption(ctx context.Context, key string) (CaptionResult, error) {
	r, err := execute(ctx, s.rt, captionPipeline, key)
	if err != nil {
		return CaptionResult{}, err
	}
	return CaptionResult{Caption: r.caption}, nil
}

func (s *system) Details(ctx context.Context, key string) (DetailsResult, error) {
	r, err := execute(ctx, s.rt, detailsPipeline, key)
	if err != nil {
		return DetailsResult{}, err
	}
	return r.details, nil
}

func (s *system) IdentifyAndSearch(ctx context.Context, key string) (IdentifyResult, error) {
	r, err := execute(ctx, s.rt, identifyPipeline, key)
	if err != nil {
		return IdentifyResult{}, err
	}
	return IdentifyResult{
		InputImage: key,
		Caption:    r.caption,
		Results:    results(r.ranked),
	}, nil
}

func (s *system) PossibleFish(ctx context.Context, key string) (candidates.RankedResult, error) {
	r, err := execute(ctx, s.rt, possibleFishPipeline, key)
	if err != nil {
		return candidates.RankedResult{}, err
	}
	return r.ranked, nil
}

func results(r candidates.RankedResult) []candidates.Record {
	if r.Candidates == nil {
		return []candidates.Record{}
	}
	return r.Candidates
}
