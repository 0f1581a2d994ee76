package identification

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/internal/vision"
	"github.com/JaimeStill/marlin/pkg/middleware"
	"github.com/JaimeStill/marlin/pkg/storage"
)

const keyRun = "run"

// run is the mutable record one request threads through its graph.
type run struct {
	key      string
	image    vision.Image
	provider string
	caption  string
	set      candidates.Set
	ranked   candidates.RankedResult
	details  DetailsResult
	err      error
}

type step struct {
	name stage.Name
	fn   func(ctx context.Context, rt *Runtime, r *run) error
}

// branch routes from one step to another when cond holds for the run.
type branch struct {
	from, to stage.Name
	cond     func(r *run) bool
}

type pipeline struct {
	name     string
	steps    []step
	branches []branch
}

var captionPipeline = pipeline{
	name: "image_captioning",
	steps: []step{
		{stage.FetchImage, fetchImage},
		{stage.Caption, captionImage},
	},
}

var detailsPipeline = pipeline{
	name: "image_identification",
	steps: []step{
		{stage.FetchImage, fetchImage},
		{stage.Details, describeImage},
	},
}

var identifyPipeline = pipeline{
	name: "identify_and_search",
	steps: []step{
		{stage.FetchImage, fetchImage},
		{stage.Caption, captionImage},
		{stage.Search, searchByCaption},
	},
}

// possibleFishPipeline skips ranking when the provider found no fish.
var possibleFishPipeline = pipeline{
	name: "search_possible_fish",
	steps: []step{
		{stage.FetchImage, fetchImage},
		{stage.Candidates, inferCandidates},
		{stage.Rank, rankCandidates},
		{stage.Assemble, assemble},
	},
	branches: []branch{
		{from: stage.Candidates, to: stage.Assemble, cond: noSubject},
	},
}

func execute(ctx context.Context, rt *Runtime, p pipeline, key string) (*run, error) {
	graph, err := buildGraph(rt, p)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	r := &run{key: key}
	initial := state.New(nil).Set(keyRun, r)

	if _, err := graph.Execute(ctx, initial); err != nil {
		if r.err != nil {
			return r, r.err
		}
		return r, fmt.Errorf("execute %s: %w", p.name, err)
	}

	rt.Logger.DebugContext(ctx, "pipeline complete",
		"pipeline", p.name,
		"key", key,
		"provider", r.provider,
		"request_id", middleware.RequestIDFrom(ctx),
	)
	return r, nil
}

func buildGraph(rt *Runtime, p pipeline) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("marlin-" + p.name)
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	for _, st := range p.steps {
		if err := graph.AddNode(string(st.name), node(rt, st)); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(p.steps); i++ {
		from, to := p.steps[i-1].name, p.steps[i].name

		pred := skipped(p.branches, from)
		if pred == nil {
			if err := graph.AddEdge(string(from), string(to), nil); err != nil {
				return nil, err
			}
			continue
		}

		if err := graph.AddEdge(string(from), string(to), state.Not(pred)); err != nil {
			return nil, err
		}
	}

	for _, b := range p.branches {
		if err := graph.AddEdge(string(b.from), string(b.to), when(b.cond)); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(string(p.steps[0].name)); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(string(p.steps[len(p.steps)-1].name)); err != nil {
		return nil, err
	}

	return graph, nil
}

// skipped returns the combined branch predicate leaving from, or nil.
func skipped(branches []branch, from stage.Name) func(s state.State) bool {
	var conds []func(r *run) bool
	for _, b := range branches {
		if b.from == from {
			conds = append(conds, b.cond)
		}
	}
	if len(conds) == 0 {
		return nil
	}
	return when(func(r *run) bool {
		for _, c := range conds {
			if c(r) {
				return true
			}
		}
		return false
	})
}

func when(cond func(r *run) bool) func(s state.State) bool {
	return func(s state.State) bool {
		r, err := runFrom(s)
		if err != nil {
			return false
		}
		return cond(r)
	}
}

func node(rt *Runtime, st step) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		r, err := runFrom(s)
		if err != nil {
			return s, err
		}

		if err := st.fn(ctx, rt, r); err != nil {
			r.err = stage.Wrap(st.name, stage.ErrUpstreamUnavailable, err)
			return s, r.err
		}
		return s, nil
	})
}

func runFrom(s state.State) (*run, error) {
	val, ok := s.Get(keyRun)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", keyRun)
	}
	r, ok := val.(*run)
	if !ok {
		return nil, fmt.Errorf("%s is not *run", keyRun)
	}
	return r, nil
}

func noSubject(r *run) bool {
	return !r.set.ContainsSubject
}

func fetchImage(ctx context.Context, rt *Runtime, r *run) error {
	done := rt.Metrics.Time(stage.FetchImage)
	data, err := rt.Images.Read(ctx, r.key)
	done()
	if err != nil {
		kind := stage.ErrUpstreamUnavailable
		if storage.MapHTTPStatus(err) == http.StatusBadRequest {
			kind = stage.ErrBadRequest
		}
		return stage.Wrap(stage.FetchImage, kind, err)
	}

	img := vision.NewImage(data)
	if err := img.Check(); err != nil {
		kind := stage.ErrUpstreamUnavailable
		if errors.Is(err, vision.ErrUnsupportedImage) {
			kind = stage.ErrBadRequest
		}
		return stage.Wrap(stage.FetchImage, kind, err)
	}
	r.image = img
	return nil
}

func captionImage(ctx context.Context, rt *Runtime, r *run) error {
	done := rt.Metrics.Time(stage.Caption)
	caption, err := rt.Model.Caption(ctx, r.image)
	done()
	if err != nil {
		return stage.Wrap(stage.Caption, stage.ErrUpstreamUnavailable, err)
	}
	r.caption = caption
	return nil
}

func describeImage(ctx context.Context, rt *Runtime, r *run) error {
	done := rt.Metrics.Time(stage.Details)
	raw, err := rt.Model.Details(ctx, r.image)
	done()
	if err != nil {
		return stage.Wrap(stage.Details, stage.ErrUpstreamUnavailable, err)
	}

	details, err := ParseDetails(raw, rt.Vocab)
	if err != nil {
		rt.Logger.WarnContext(ctx, "details output rejected", "error", err)
		return stage.Wrap(stage.Normalize, stage.ErrMalformedOutput, err)
	}
	r.details = details
	return nil
}

func searchByCaption(ctx context.Context, rt *Runtime, r *run) error {
	ranked, err := rt.Search.Similar(ctx, r.caption)
	if err != nil {
		return stage.Wrap(stage.Search, stage.ErrUpstreamUnavailable, err)
	}
	r.ranked = ranked
	return nil
}

// inferCandidates reads the selector once; later toggles do not affect
// this request.
func inferCandidates(ctx context.Context, rt *Runtime, r *run) error {
	provider := rt.Providers.Pick(rt.Selector.Alternate())
	r.provider = provider.Name()

	out, err := provider.Candidates(ctx, r.image)
	r.caption = out.Caption
	if err != nil {
		return err
	}
	r.set = out.Set
	return nil
}

func rankCandidates(ctx context.Context, rt *Runtime, r *run) error {
	r.ranked = candidates.Rank(r.set, rt.TopN)
	return nil
}

func assemble(ctx context.Context, rt *Runtime, r *run) error {
	if !r.set.ContainsSubject {
		r.ranked = candidates.Rank(r.set, rt.TopN)
	}
	if r.ranked.ContainsSubject && len(r.ranked.Candidates) < rt.TopN {
		rt.Logger.InfoContext(ctx, "fewer candidates than requested",
			"provider", r.provider,
			"returned", len(r.ranked.Candidates),
			"top_n", rt.TopN,
		)
	}
	return nil
}
