package providers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/providers"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/internal/vision"
)

type fakeModel struct {
	caption    string
	candidates string
	err        error
}

func (f *fakeModel) Caption(ctx context.Context, img vision.Image) (string, error) {
	return f.caption, f.err
}

func (f *fakeModel) Candidates(ctx context.Context, img vision.Image) (string, error) {
	return f.candidates, f.err
}

func (f *fakeModel) Details(ctx context.Context, img vision.Image) (string, error) {
	return "", f.err
}

func (f *fakeModel) Chat(ctx context.Context, prompt string) (string, error) {
	return "", f.err
}

type vocab map[string]string

func (v vocab) Canonical(name string) (string, bool) {
	n, ok := v[name]
	return n, ok
}

var fishVocab = vocab{"Whale shark": "Whale shark", "Manta ray": "Manta ray"}

type fakeSearcher struct {
	text string
	set  candidates.Set
	err  error
}

func (f *fakeSearcher) Candidates(ctx context.Context, text string) (candidates.Set, error) {
	f.text = text
	return f.set, f.err
}

var (
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
	img     = vision.NewImage([]byte{0xff, 0xd8, 0xff, 0xe0})
)

func TestDirect(t *testing.T) {
	model := &fakeModel{candidates: "Here you go:\n```json\n" +
		`{"image_contains_fish": true, "results": [` +
		`{"fish_name": "Whale shark", "score": 0.9, "score_reason": "spots"},` +
		`{"fish_name": "Goldfish", "score": 0.8, "score_reason": "orange"}]}` +
		"\n```"}

	out, err := providers.NewDirect(model, fishVocab, nil, discard).Candidates(context.Background(), img)
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if out.Caption != "" {
		t.Errorf("caption = %q, want empty", out.Caption)
	}
	if len(out.Set.Records) != 1 || out.Set.Records[0].Name() != "Whale shark" {
		t.Errorf("records = %+v", out.Set.Records)
	}
	if len(out.Set.Dropped) != 1 {
		t.Errorf("dropped = %v", out.Set.Dropped)
	}
}

func TestDirectFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		stage stage.Name
		kind  error
	}{
		{"model unavailable", &fakeModel{err: errors.New("429 rate limited")}, stage.Candidates, stage.ErrUpstreamUnavailable},
		{"no json", &fakeModel{candidates: "I cannot help with that."}, stage.Normalize, stage.ErrMalformedOutput},
		{"schema violation", &fakeModel{candidates: `{"results": "none"}`}, stage.Normalize, stage.ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := providers.NewDirect(tt.model, fishVocab, nil, discard).Candidates(context.Background(), img)
			se, ok := stage.From(err)
			if !ok {
				t.Fatalf("error %v carries no stage", err)
			}
			if se.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", se.Stage, tt.stage)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v is not %v", err, tt.kind)
			}
		})
	}
}

func TestCaptionSearch(t *testing.T) {
	model := &fakeModel{caption: "A huge shark with white spots."}
	searcher := &fakeSearcher{set: candidates.Set{
		ContainsSubject: true,
		Records:         []candidates.Record{candidates.NewRecord("Whale shark", 0.88, "spots")},
	}}

	out, err := providers.NewCaptionSearch(model, searcher, nil, discard).Candidates(context.Background(), img)
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if searcher.text != model.caption {
		t.Errorf("searched %q, want caption", searcher.text)
	}
	if out.Caption != model.caption {
		t.Errorf("caption = %q", out.Caption)
	}
	if len(out.Set.Records) != 1 {
		t.Errorf("records = %+v", out.Set.Records)
	}
}

func TestCaptionSearchFailures(t *testing.T) {
	t.Run("caption", func(t *testing.T) {
		model := &fakeModel{err: errors.New("timeout")}
		_, err := providers.NewCaptionSearch(model, &fakeSearcher{}, nil, discard).Candidates(context.Background(), img)

		if se, ok := stage.From(err); !ok || se.Stage != stage.Caption {
			t.Errorf("error = %v, want caption stage", err)
		}
	})

	t.Run("search keeps its stage", func(t *testing.T) {
		model := &fakeModel{caption: "a ray"}
		searcher := &fakeSearcher{err: stage.Wrap(stage.Search, stage.ErrUpstreamUnavailable, errors.New("down"))}
		out, err := providers.NewCaptionSearch(model, searcher, nil, discard).Candidates(context.Background(), img)

		if se, ok := stage.From(err); !ok || se.Stage != stage.Search {
			t.Errorf("error = %v, want search stage", err)
		}
		if out.Caption != "a ray" {
			t.Errorf("caption should survive a search failure, got %q", out.Caption)
		}
	})
}

func TestPairPick(t *testing.T) {
	pair := providers.Pair{
		Primary:   providers.NewDirect(&fakeModel{}, fishVocab, nil, discard),
		Alternate: providers.NewCaptionSearch(&fakeModel{}, &fakeSearcher{}, nil, discard),
	}

	if got := pair.Pick(false).Name(); got != providers.NameDirect {
		t.Errorf("Pick(false) = %s", got)
	}
	if got := pair.Pick(true).Name(); got != providers.NameCaptionSearch {
		t.Errorf("Pick(true) = %s", got)
	}
}
