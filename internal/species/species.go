// Package species holds the closed vocabulary of fish names the service may
// return, loaded once at startup from a reference CSV.
package species

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"github.com/JaimeStill/marlin/pkg/formatting"
)

const (
	ColumnName           = "Fish Name"
	ColumnDescription    = "Physical Description"
	ColumnScientificName = "Scientific Name"
)

var (
	// ErrEmptyCatalog indicates the reference data yielded no species.
	ErrEmptyCatalog = errors.New("species catalog is empty")
	// ErrMissingColumn indicates a required CSV column is absent.
	ErrMissingColumn = errors.New("species csv missing required column")
)

// Species is one entry of the reference dataset.
type Species struct {
	Name           string `json:"fish_name"`
	ScientificName string `json:"scientific_name,omitempty"`
	Description    string `json:"physical_description"`
}

// Catalog is the allowed-species set. It is read-only after construction
// and safe for concurrent use.
type Catalog struct {
	species []Species
	index   map[string]int
}

// New builds a Catalog from species entries. Entries with an empty name or
// description are skipped; later duplicates of a name are ignored.
func New(entries []Species) (*Catalog, error) {
	c := &Catalog{
		species: make([]Species, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.Description = strings.TrimSpace(e.Description)
		e.ScientificName = strings.TrimSpace(e.ScientificName)
		if e.Name == "" || e.Description == "" {
			continue
		}

		key := Key(e.Name)
		if _, exists := c.index[key]; exists {
			continue
		}
		c.index[key] = len(c.species)
		c.species = append(c.species, e)
	}

	if len(c.species) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Load reads the reference CSV at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open species csv: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads species rows from CSV with a header row. Column headers are
// matched case-insensitively.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[Key(h)] = i
	}

	nameCol, ok := cols[Key(ColumnName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnName)
	}
	descCol, ok := cols[Key(ColumnDescription)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnDescription)
	}
	sciCol, hasSci := cols[Key(ColumnScientificName)]

	var entries []Species
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		e := Species{
			Name:        field(row, nameCol),
			Description: field(row, descCol),
		}
		if hasSci {
			e.ScientificName = field(row, sciCol)
		}
		entries = append(entries, e)
	}

	return New(entries)
}

// Canonical resolves name to its catalog spelling. Case, hyphens,
// underscores, and whitespace runs are ignored when matching.
func (c *Catalog) Canonical(name string) (string, bool) {
	i, ok := c.index[Key(name)]
	if !ok {
		return "", false
	}
	return c.species[i].Name, true
}

// All returns a copy of the catalog entries in file order.
func (c *Catalog) All() []Species {
	out := make([]Species, len(c.species))
	copy(out, c.species)
	return out
}

// Len returns the number of species.
func (c *Catalog) Len() int {
	return len(c.species)
}

// Key folds a species name into its matching form.
func Key(name string) string {
	name = cases.Fold().String(formatting.Clean(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
