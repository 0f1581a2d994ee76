package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	notAvailable  = "N/A"
	captionLength = 100
)

// Header is the first CSV record written by WriteCSV.
var Header = []string{
	"Image Path",
	"Expected Species (Folder Name)",
	"AI Generated Caption",
	"Top Candidate",
	"Top Candidate Score",
	"Expected Species In Top Candidates",
	"All Top Candidates",
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write %s: %w", r.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r Row) []string {
	if r.Err != nil {
		return []string{r.Key, r.Expected, "ERROR: " + r.Err.Error(), notAvailable, "0.0", "FALSE", notAvailable}
	}

	top, score, all := notAvailable, notAvailable, notAvailable
	if len(r.Candidates) > 0 {
		top = r.Candidates[0].Name()
		score = fmt.Sprintf("%.4f", r.Candidates[0].Score())

		ranked := make([]string, len(r.Candidates))
		for i, c := range r.Candidates {
			ranked[i] = fmt.Sprintf("R%d: %s (%.4f)", i+1, c.Name(), c.Score())
		}
		all = strings.Join(ranked, "; ")
	}

	matched := "FALSE"
	if r.Matched {
		matched = "TRUE"
	}

	return []string{r.Key, r.Expected, shorten(r.Caption), top, score, matched, all}
}

// shorten flattens newlines and keeps the first captionLength runes.
func shorten(caption string) string {
	flat := []rune(strings.ReplaceAll(caption, "\n", " "))
	if len(flat) > captionLength {
		flat = flat[:captionLength]
	}
	return string(flat) + "..."
}
