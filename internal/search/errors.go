package search

import "errors"

// Request validation errors.
var (
	ErrEmptyText           = errors.New("no text input provided")
	ErrEmptyScientificName = errors.New("no scientific name provided")
)
