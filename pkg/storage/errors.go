package storage

import (
	"errors"
	"net/http"
)

// Azure rejects blob names longer than this many characters.
const maxKeyLength = 1024

var (
	ErrNotFound   = errors.New("image object not found")
	ErrEmptyKey   = errors.New("image key must not be empty")
	ErrInvalidKey = errors.New("image key must not contain '..' segments")
	ErrKeyTooLong = errors.New("image key exceeds 1024 characters")
	ErrTooLarge   = errors.New("image object exceeds maximum object size")
)

// statuses lists the caller-facing status for each sentinel. Key errors
// are the caller's fault; an absent or oversized object means the image
// cannot be served, so the identification route reports the store as
// the failing dependency.
var statuses = []struct {
	err    error
	status int
}{
	{ErrEmptyKey, http.StatusBadRequest},
	{ErrInvalidKey, http.StatusBadRequest},
	{ErrKeyTooLong, http.StatusBadRequest},
	{ErrNotFound, http.StatusServiceUnavailable},
	{ErrTooLarge, http.StatusServiceUnavailable},
}

// MapHTTPStatus returns the status code for a storage error, or 500 for
// errors the package does not define.
func MapHTTPStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
