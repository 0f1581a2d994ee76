// Package evaluation measures identification accuracy over a labelled image
// set. Images are stored as <prefix><Species-Name>/<file>; the folder names
// the expected species.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/identification"
	"github.com/JaimeStill/marlin/internal/species"
)

// Unknown is the expected species for keys outside a species folder.
const Unknown = "UNKNOWN"

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Lister enumerates object keys under a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Identifier captions an image and searches the knowledge base.
type Identifier interface {
	IdentifyAndSearch(ctx context.Context, key string) (identification.IdentifyResult, error)
}

// Options controls one evaluation run.
type Options struct {
	Prefix      string
	Concurrency int
	// Limit caps the number of images evaluated. Zero evaluates all.
	Limit int
}

// Row is the outcome for one image. Err is set when identification failed.
type Row struct {
	Key        string
	Expected   string
	Caption    string
	Candidates []candidates.Record
	Matched    bool
	Err        error
}

// Summary counts the rows of a run.
type Summary struct {
	Total   int
	Matched int
	Failed  int
}

// Accuracy is the share of evaluated images whose expected species appeared
// among the candidates.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Total)
}

// Summarize counts matched and failed rows.
func Summarize(rows []Row) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Matched:
			s.Matched++
		}
	}
	return s
}

// Run evaluates every image under opts.Prefix. A failed identification is
// recorded on its row and does not stop the run. Rows follow listing order.
func Run(ctx context.Context, lister Lister, ident Identifier, opts Options, logger *slog.Logger) ([]Row, error) {
	keys, err := lister.List(ctx, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	keys = Images(keys)
	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}

	logger.Info("evaluation started", "prefix", opts.Prefix, "images", len(keys))

	rows := make([]Row, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for i, key := range keys {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rows[i] = evaluate(gctx, ident, opts.Prefix, key)
			if rows[i].Err != nil {
				logger.Warn("identification failed", "key", key, "error", rows[i].Err)
			} else {
				logger.Debug("image evaluated", "key", key, "expected", rows[i].Expected, "matched", rows[i].Matched)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

func evaluate(ctx context.Context, ident Identifier, prefix, key string) Row {
	row := Row{Key: key, Expected: ExpectedSpecies(prefix, key)}

	result, err := ident.IdentifyAndSearch(ctx, key)
	if err != nil {
		row.Err = err
		return row
	}

	row.Caption = result.Caption
	row.Candidates = result.Results
	row.Matched = Matches(row.Expected, result.Results)
	return row
}

// Images keeps the keys with an image extension.
func Images(keys []string) []string {
	var out []string
	for _, k := range keys {
		ext := strings.ToLower(path.Ext(k))
		for _, e := range imageExtensions {
			if ext == e {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// ExpectedSpecies derives the species from the first folder below prefix,
// with hyphens read as spaces: fish-image/Bigeye-snapper/001.png names
// "Bigeye snapper".
func ExpectedSpecies(prefix, key string) string {
	rel, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return Unknown
	}
	folder, _, found := strings.Cut(rel, "/")
	if !found || folder == "" {
		return Unknown
	}
	return strings.ReplaceAll(folder, "-", " ")
}

// Matches reports whether expected names any candidate under the catalog's
// name folding.
func Matches(expected string, records []candidates.Record) bool {
	want := species.Key(expected)
	return slices.ContainsFunc(records, func(r candidates.Record) bool {
		return species.Key(r.Name()) == want
	})
}
