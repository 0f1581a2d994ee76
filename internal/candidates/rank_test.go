package candidates_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/JaimeStill/marlin/internal/candidates"
)

type pair struct {
	name  string
	score float64
}

func records(pairs ...pair) []candidates.Record {
	out := make([]candidates.Record, len(pairs))
	for i, p := range pairs {
		out[i] = candidates.NewRecord(p.name, p.score, "")
	}
	return out
}

func assertRanked(t *testing.T, got candidates.RankedResult, want ...pair) {
	t.Helper()
	if len(got.Candidates) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(got.Candidates), len(want), got.Candidates)
	}
	for i, w := range want {
		c := got.Candidates[i]
		if c.Name() != w.name || c.Score() != w.score {
			t.Errorf("[%d] = (%s, %v), want (%s, %v)", i, c.Name(), c.Score(), w.name, w.score)
		}
	}
}

func TestRankDedupeAndTruncate(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: true,
		Records: records(
			pair{"Whale shark", 0.95},
			pair{"Whale shark", 0.5},
			pair{"Zebra shark", 0.8},
			pair{"Manta ray", 0.3},
		),
	}

	got := candidates.Rank(set, 2)

	if !got.ContainsSubject {
		t.Error("ContainsSubject = false, want true")
	}
	assertRanked(t, got, pair{"Whale shark", 0.95}, pair{"Zebra shark", 0.8})
}

func TestRankKeepsHighestDuplicate(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: true,
		Records: records(
			pair{"Manta ray", 0.2},
			pair{"Zebra shark", 0.6},
			pair{"Manta ray", 0.9},
		),
	}

	got := candidates.Rank(set, 5)
	assertRanked(t, got, pair{"Manta ray", 0.9}, pair{"Zebra shark", 0.6})
}

func TestRankStableTies(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: true,
		Records: records(
			pair{"B", 0.5},
			pair{"A", 0.7},
			pair{"C", 0.5},
			pair{"D", 0.5},
		),
	}

	got := candidates.Rank(set, 0)
	assertRanked(t, got, pair{"A", 0.7}, pair{"B", 0.5}, pair{"C", 0.5}, pair{"D", 0.5})
}

func TestRankEqualDuplicateKeepsFirstSeen(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: true,
		Records: []candidates.Record{
			candidates.NewRecord("Whale shark", 0.8, "first"),
			candidates.NewRecord("Whale shark", 0.8, "second"),
		},
	}

	got := candidates.Rank(set, 5)
	if len(got.Candidates) != 1 {
		t.Fatalf("len = %d, want 1", len(got.Candidates))
	}
	if got.Candidates[0].Reason() != "first" {
		t.Errorf("reason = %q, want first", got.Candidates[0].Reason())
	}
}

func TestRankExactlyN(t *testing.T) {
	for _, size := range []int{5, 6, 12} {
		t.Run(fmt.Sprintf("%d distinct", size), func(t *testing.T) {
			var pairs []pair
			for i := range size {
				pairs = append(pairs, pair{fmt.Sprintf("species-%d", i), float64(i) / float64(size)})
			}

			got := candidates.Rank(candidates.Set{ContainsSubject: true, Records: records(pairs...)}, 5)

			if len(got.Candidates) != 5 {
				t.Fatalf("len = %d, want 5", len(got.Candidates))
			}
			for i := 1; i < len(got.Candidates); i++ {
				if got.Candidates[i-1].Score() < got.Candidates[i].Score() {
					t.Errorf("not descending at %d: %v < %v", i, got.Candidates[i-1].Score(), got.Candidates[i].Score())
				}
			}
		})
	}
}

func TestRankFewerThanN(t *testing.T) {
	set := candidates.Set{ContainsSubject: true, Records: records(pair{"A", 0.4}, pair{"B", 0.9})}
	got := candidates.Rank(set, 5)
	assertRanked(t, got, pair{"B", 0.9}, pair{"A", 0.4})
}

func TestRankIdempotent(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: true,
		Records: records(
			pair{"A", 0.1}, pair{"B", 0.9}, pair{"A", 0.3},
			pair{"C", 0.9}, pair{"D", 0.5}, pair{"E", 0.2}, pair{"F", 0.7},
		),
	}

	once := candidates.Rank(set, 5)
	twice := candidates.Rank(candidates.Set{ContainsSubject: true, Records: once.Candidates}, 5)

	if len(once.Candidates) != len(twice.Candidates) {
		t.Fatalf("len changed: %d -> %d", len(once.Candidates), len(twice.Candidates))
	}
	for i := range once.Candidates {
		if once.Candidates[i] != twice.Candidates[i] {
			t.Errorf("[%d] changed: %+v -> %+v", i, once.Candidates[i], twice.Candidates[i])
		}
	}
}

func TestRankNoSubject(t *testing.T) {
	set := candidates.Set{
		ContainsSubject: false,
		RejectionReason: "image shows a coral reef without fish",
		Records:         records(pair{"A", 0.9}),
	}

	got := candidates.Rank(set, 5)

	if got.ContainsSubject {
		t.Error("ContainsSubject = true, want false")
	}
	if len(got.Candidates) != 0 {
		t.Errorf("candidates = %v, want empty", got.Candidates)
	}
	if got.RejectionReason != set.RejectionReason {
		t.Errorf("RejectionReason = %q", got.RejectionReason)
	}
}

func TestRankEmpty(t *testing.T) {
	got := candidates.Rank(candidates.Set{ContainsSubject: true}, 5)
	if !got.ContainsSubject {
		t.Error("ContainsSubject = false, want true")
	}
	if len(got.Candidates) != 0 {
		t.Errorf("candidates = %v, want empty", got.Candidates)
	}
}

func TestNewRecordClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.4, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tt := range tests {
		if got := candidates.NewRecord("A", tt.in, "").Score(); got != tt.want {
			t.Errorf("NewRecord(%v).Score() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRankedResultJSON(t *testing.T) {
	t.Run("with candidates", func(t *testing.T) {
		r := candidates.RankedResult{
			ContainsSubject: true,
			Candidates:      []candidates.Record{candidates.NewRecord("Whale shark", 0.95, "spots")},
		}

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		want := `{"image_contains_fish":true,"results":[{"fish_name":"Whale shark","score":0.95,"score_reason":"spots"}]}`
		if string(data) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		r := candidates.Rank(candidates.Set{ContainsSubject: false, RejectionReason: "no fish"}, 5)

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		want := `{"image_contains_fish":false,"rejection_reason":"no fish","results":[]}`
		if string(data) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})
}

func TestRankedResultHighestFirst(t *testing.T) {
	r := candidates.Rank(candidates.Set{ContainsSubject: true, Records: records(pair{"A", 0.2}, pair{"B", 0.8})}, 5)

	if len(r.Candidates) != 2 || r.Candidates[0].Name() != "B" {
		t.Errorf("candidates = %v, want B first", r.Candidates)
	}
}
