// Package middleware holds the HTTP middleware shared by marlin modules.
package middleware

import "net/http"

// Middleware wraps a handler with cross-cutting behavior.
type Middleware = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first layer added is the
// outermost at request time.
type System interface {
	Use(layers ...Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack []Middleware

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(layers ...Middleware) {
	*s = append(*s, layers...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	layers := *s
	for i := len(layers) - 1; i >= 0; i-- {
		handler = layers[i](handler)
	}
	return handler
}
