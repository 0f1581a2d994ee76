// Package stage names the steps of an identification request and carries
// failures tagged with the step and failure kind that produced them.
package stage

import (
	"errors"
	"fmt"
	"net/http"
)

// Name identifies a pipeline step.
type Name string

const (
	FetchImage Name = "fetch_image"
	Caption    Name = "caption"
	Candidates Name = "candidates"
	Details    Name = "details"
	Embed      Name = "embed"
	Search     Name = "search"
	Normalize  Name = "normalize"
	Rank       Name = "rank"
	Assemble   Name = "assemble"
	Generate   Name = "generate"
)

// Failure kinds. An Error matches exactly one of these with errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedOutput     = errors.New("malformed upstream output")
)

var services = map[Name]string{
	FetchImage: "storage",
	Caption:    "vision",
	Candidates: "vision",
	Details:    "vision",
	Generate:   "vision",
	Embed:      "embedding",
	Search:     "search",
	Normalize:  "identification",
	Rank:       "identification",
	Assemble:   "identification",
}

// Service returns the dependency a stage talks to.
func (n Name) Service() string {
	if s, ok := services[n]; ok {
		return s
	}
	return "identification"
}

// Error is a failure attributed to a stage.
type Error struct {
	Stage Name
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Wrap attributes err to stage with the given kind. Returns nil for a nil err
// and leaves an existing *Error untouched.
func Wrap(stage Name, kind, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Stage: stage, Kind: kind, Err: err}
}

// From extracts the stage error from err's chain.
func From(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindName returns a short label for the failure kind of err.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	default:
		return "unexpected"
	}
}

// HTTPStatus maps failure kinds to response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrMalformedOutput):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
