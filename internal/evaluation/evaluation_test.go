package evaluation_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/evaluation"
	"github.com/JaimeStill/marlin/internal/identification"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeLister struct {
	keys []string
	err  error
}

func (f fakeLister) List(ctx context.Context, prefix string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

type fakeIdentifier struct {
	results map[string]identification.IdentifyResult
	calls   atomic.Int32
}

func (f *fakeIdentifier) IdentifyAndSearch(ctx context.Context, key string) (identification.IdentifyResult, error) {
	f.calls.Add(1)
	r, ok := f.results[key]
	if !ok {
		return identification.IdentifyResult{}, errors.New("vision service unavailable")
	}
	return r, nil
}

func TestExpectedSpecies(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{"species folder", "fish-image/", "fish-image/Bigeye-snapper/bigeye-snapper-001.png", "Bigeye snapper"},
		{"nested folder", "fish-image/", "fish-image/Argus-grouper/extra/001.png", "Argus grouper"},
		{"no folder", "fish-image/", "fish-image/loose.png", evaluation.Unknown},
		{"outside prefix", "fish-image/", "other/Clownfish/001.png", evaluation.Unknown},
		{"empty folder", "fish-image/", "fish-image//001.png", evaluation.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluation.ExpectedSpecies(tt.prefix, tt.key); got != tt.want {
				t.Errorf("ExpectedSpecies(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestImages(t *testing.T) {
	keys := []string{
		"fish-image/A/1.png",
		"fish-image/A/2.JPG",
		"fish-image/A/3.jpeg",
		"fish-image/A/4.webp",
		"fish-image/A/5.gif",
		"fish-image/A/notes.txt",
		"fish-image/A/",
	}

	got := evaluation.Images(keys)
	want := []string{"fish-image/A/1.png", "fish-image/A/2.JPG", "fish-image/A/3.jpeg"}
	if !slices.Equal(got, want) {
		t.Errorf("Images() = %v, want %v", got, want)
	}
}

func TestMatches(t *testing.T) {
	records := []candidates.Record{
		candidates.NewRecord("Whale shark", 0.9, ""),
		candidates.NewRecord("Bigeye-Snapper", 0.7, ""),
	}

	tests := []struct {
		expected string
		want     bool
	}{
		{"Whale shark", true},
		{"whale shark", true},
		{"Bigeye snapper", true},
		{"bigeye_snapper", true},
		{"  Whale   SHARK ", true},
		{"Manta ray", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := evaluation.Matches(tt.expected, records); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.expected, got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	lister := fakeLister{keys: []string{
		"fish-image/Whale-shark/001.png",
		"fish-image/Manta-ray/001.jpg",
		"fish-image/Manta-ray/readme.md",
		"fish-image/Clownfish/001.png",
		"archive/Whale-shark/002.png",
	}}
	ident := &fakeIdentifier{results: map[string]identification.IdentifyResult{
		"fish-image/Whale-shark/001.png": {
			InputImage: "fish-image/Whale-shark/001.png",
			Caption:    "A large spotted shark",
			Results: []candidates.Record{
				candidates.NewRecord("Whale shark", 0.93, ""),
				candidates.NewRecord("Tiger shark", 0.41, ""),
			},
		},
		"fish-image/Manta-ray/001.jpg": {
			InputImage: "fish-image/Manta-ray/001.jpg",
			Caption:    "A wide flat fish",
			Results:    []candidates.Record{candidates.NewRecord("Eagle ray", 0.66, "")},
		},
	}}

	rows, err := evaluation.Run(context.Background(), lister, ident, evaluation.Options{
		Prefix:      "fish-image/",
		Concurrency: 2,
	}, discard)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Run() returned %d rows, want 3", len(rows))
	}

	wantKeys := []string{
		"fish-image/Whale-shark/001.png",
		"fish-image/Manta-ray/001.jpg",
		"fish-image/Clownfish/001.png",
	}
	for i, want := range wantKeys {
		if rows[i].Key != want {
			t.Errorf("rows[%d].Key = %q, want %q", i, rows[i].Key, want)
		}
	}

	if !rows[0].Matched || rows[1].Matched {
		t.Errorf("Matched = %v, %v; want true, false", rows[0].Matched, rows[1].Matched)
	}
	if rows[2].Err == nil {
		t.Error("rows[2].Err = nil, want identification failure")
	}

	summary := evaluation.Summarize(rows)
	want := evaluation.Summary{Total: 3, Matched: 1, Failed: 1}
	if summary != want {
		t.Errorf("Summarize() = %+v, want %+v", summary, want)
	}
}

func TestRunLimit(t *testing.T) {
	lister := fakeLister{keys: []string{
		"fish-image/A/1.png",
		"fish-image/A/2.png",
		"fish-image/A/3.png",
	}}
	ident := &fakeIdentifier{}

	rows, err := evaluation.Run(context.Background(), lister, ident, evaluation.Options{
		Prefix: "fish-image/",
		Limit:  2,
	}, discard)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rows) != 2 || ident.calls.Load() != 2 {
		t.Errorf("Run() rows = %d calls = %d, want 2 and 2", len(rows), ident.calls.Load())
	}
}

func TestRunListFailure(t *testing.T) {
	_, err := evaluation.Run(context.Background(), fakeLister{err: errors.New("container unreachable")}, &fakeIdentifier{}, evaluation.Options{}, discard)
	if err == nil {
		t.Fatal("Run() error = nil, want list failure")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := fakeLister{keys: []string{"fish-image/A/1.png"}}
	_, err := evaluation.Run(ctx, lister, &fakeIdentifier{}, evaluation.Options{Prefix: "fish-image/"}, discard)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSummaryAccuracy(t *testing.T) {
	if got := (evaluation.Summary{}).Accuracy(); got != 0 {
		t.Errorf("empty Accuracy() = %v, want 0", got)
	}
	if got := (evaluation.Summary{Total: 4, Matched: 3}).Accuracy(); got != 0.75 {
		t.Errorf("Accuracy() = %v, want 0.75", got)
	}
}

func TestWriteCSV(t *testing.T) {
	long := strings.Repeat("a", 120)
	rows := []evaluation.Row{
		{
			Key:      "fish-image/Whale-shark/001.png",
			Expected: "Whale shark",
			Caption:  "A large\nspotted shark",
			Candidates: []candidates.Record{
				candidates.NewRecord("Whale shark", 0.93, ""),
				candidates.NewRecord("Tiger shark", 0.41, ""),
			},
			Matched: true,
		},
		{
			Key:      "fish-image/Manta-ray/001.png",
			Expected: "Manta ray",
			Caption:  long,
		},
		{
			Key:      "fish-image/Clownfish/001.png",
			Expected: "Clownfish",
			Err:      errors.New("vision service unavailable"),
		},
	}

	var buf bytes.Buffer
	if err := evaluation.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	want := [][]string{
		evaluation.Header,
		{"fish-image/Whale-shark/001.png", "Whale shark", "A large spotted shark...", "Whale shark", "0.9300", "TRUE", "R1: Whale shark (0.9300); R2: Tiger shark (0.4100)"},
		{"fish-image/Manta-ray/001.png", "Manta ray", strings.Repeat("a", 100) + "...", "N/A", "N/A", "FALSE", "N/A"},
		{"fish-image/Clownfish/001.png", "Clownfish", "ERROR: vision service unavailable", "N/A", "0.0", "FALSE", "N/A"},
	}

	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d = %q, want %q", i, records[i], want[i])
		}
	}
}
