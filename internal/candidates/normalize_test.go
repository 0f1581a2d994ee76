package candidates_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/marlin/internal/candidates"
)

type vocab map[string]string

func (v vocab) Canonical(name string) (string, bool) {
	c, ok := v[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

var fish = vocab{
	"whale shark":    "Whale shark",
	"zebra shark":    "Zebra shark",
	"manta ray":      "Manta ray",
	"bigeye snapper": "Bigeye snapper",
}

func TestExtractJSONPayload(t *testing.T) {
	t.Run("fenced JSON with leading prose", func(t *testing.T) {
		raw := "Based on the image, here is my analysis:\n```json\n{\"image_contains_fish\": true, \"results\": []}\n```\nLet me know!"
		got, err := candidates.ExtractJSONPayload(raw)
		if err != nil {
			t.Fatalf("ExtractJSONPayload error: %v", err)
		}
		if got != `{"image_contains_fish": true, "results": []}` {
			t.Errorf("payload = %q", got)
		}
	})

	t.Run("skips invalid braces", func(t *testing.T) {
		raw := `Scores use {confidence} values: {"results": []}`
		got, err := candidates.ExtractJSONPayload(raw)
		if err != nil {
			t.Fatalf("ExtractJSONPayload error: %v", err)
		}
		if got != `{"results": []}` {
			t.Errorf("payload = %q", got)
		}
	})

	t.Run("no object", func(t *testing.T) {
		_, err := candidates.ExtractJSONPayload("I could not identify the fish.")
		if !errors.Is(err, candidates.ErrMalformedOutput) {
			t.Errorf("error = %v, want ErrMalformedOutput", err)
		}
	})
}

func TestNormalize(t *testing.T) {
	raw := "```json\n{\n" +
		"  \"image_contains_fish\": true,\n" +
		"  \"results\": [\n" +
		"    {\"fish_name\": \"Whale shark\", \"score\": 0.95, \"score_reason\": \"checkerboard spots\"},\n" +
		"    {\"fish_name\": \"Great white shark\", \"score\": 0.9, \"score_reason\": \"not in list\"},\n" +
		"    {\"fish_name\": \"zebra shark\", \"score\": \"0.8\"},\n" +
		"    {\"fish_name\": \"Manta ray\", \"score\": 1.4, \"score_reason\": \"wide fins\"}\n" +
		"  ]\n}\n```"

	set, err := candidates.Normalize(raw, fish)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}

	if !set.ContainsSubject {
		t.Error("ContainsSubject = false")
	}
	if len(set.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(set.Records))
	}

	if set.Records[0].Name() != "Whale shark" {
		t.Errorf("[0] name = %q", set.Records[0].Name())
	}
	if set.Records[1].Name() != "Zebra shark" || set.Records[1].Score() != 0.8 {
		t.Errorf("[1] = %s %v", set.Records[1].Name(), set.Records[1].Score())
	}
	if set.Records[1].Reason() != "" {
		t.Errorf("[1] reason = %q, want empty", set.Records[1].Reason())
	}
	if set.Records[2].Score() != 1 {
		t.Errorf("[2] score = %v, want clamped 1", set.Records[2].Score())
	}

	if len(set.Dropped) != 1 || set.Dropped[0] != "Great white shark" {
		t.Errorf("Dropped = %v", set.Dropped)
	}
}

func TestParseCandidatesKeyAliases(t *testing.T) {
	tree := map[string]any{
		"top_candidates": []any{
			map[string]any{"english_name": "Bigeye snapper", "confidence": 0.7, "reason": "red body"},
			map[string]any{"species": "Manta ray", "similarity": 0.6, "rationale": "wings"},
		},
	}

	set, err := candidates.ParseCandidates(tree, fish)
	if err != nil {
		t.Fatalf("ParseCandidates error: %v", err)
	}
	if len(set.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(set.Records))
	}
	if set.Records[0].Name() != "Bigeye snapper" || set.Records[0].Reason() != "red body" {
		t.Errorf("[0] = %+v", set.Records[0])
	}
	if set.Records[1].Reason() != "wings" {
		t.Errorf("[1] reason = %q", set.Records[1].Reason())
	}
	if !set.ContainsSubject {
		t.Error("absent subject flag should default to true")
	}
}

func TestParseCandidatesNoSubject(t *testing.T) {
	tree := map[string]any{
		"image_contains_fish": false,
		"rejection_reason":    "The image shows a dolphin.",
	}

	set, err := candidates.ParseCandidates(tree, fish)
	if err != nil {
		t.Fatalf("ParseCandidates error: %v", err)
	}
	if set.ContainsSubject {
		t.Error("ContainsSubject = true, want false")
	}
	if set.RejectionReason != "The image shows a dolphin." {
		t.Errorf("RejectionReason = %q", set.RejectionReason)
	}

	ranked := candidates.Rank(set, 5)
	if len(ranked.Candidates) != 0 {
		t.Errorf("ranked candidates = %v, want empty", ranked.Candidates)
	}
}

func TestParseCandidatesSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		tree map[string]any
	}{
		{
			name: "missing results",
			tree: map[string]any{"image_contains_fish": true},
		},
		{
			name: "results not array",
			tree: map[string]any{"results": "Whale shark"},
		},
		{
			name: "element not object",
			tree: map[string]any{"results": []any{"Whale shark"}},
		},
		{
			name: "name not string",
			tree: map[string]any{"results": []any{map[string]any{"fish_name": 7.0, "score": 0.5}}},
		},
		{
			name: "missing name",
			tree: map[string]any{"results": []any{map[string]any{"score": 0.5}}},
		},
		{
			name: "score not numeric",
			tree: map[string]any{"results": []any{map[string]any{"fish_name": "Whale shark", "score": "high"}}},
		},
		{
			name: "missing score",
			tree: map[string]any{"results": []any{map[string]any{"fish_name": "Whale shark"}}},
		},
		{
			name: "reason not string",
			tree: map[string]any{"results": []any{map[string]any{"fish_name": "Whale shark", "score": 0.5, "score_reason": 3.0}}},
		},
		{
			name: "subject flag not boolean",
			tree: map[string]any{"image_contains_fish": 1.0, "results": []any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := candidates.ParseCandidates(tt.tree, fish)
			if !errors.Is(err, candidates.ErrSchemaViolation) {
				t.Errorf("error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := candidates.Normalize("Sorry, I cannot help with that.", fish)
	if !errors.Is(err, candidates.ErrMalformedOutput) {
		t.Errorf("error = %v, want ErrMalformedOutput", err)
	}
}

func TestFromHits(t *testing.T) {
	hits := []candidates.Hit{
		{Name: "whale shark", Score: 0.91, Reason: "large spotted body"},
		{Name: "Blue whale", Score: 0.88},
		{Name: "Manta ray", Score: 0.4},
	}

	set := candidates.FromHits(hits, fish)

	if len(set.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(set.Records))
	}
	if set.Records[0].Name() != "Whale shark" || set.Records[0].Reason() != "large spotted body" {
		t.Errorf("[0] = %+v", set.Records[0])
	}
	if len(set.Dropped) != 1 || set.Dropped[0] != "Blue whale" {
		t.Errorf("Dropped = %v", set.Dropped)
	}
}
