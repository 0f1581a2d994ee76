// Package module groups routes under a single-level path prefix with their
// own middleware stack.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/marlin/pkg/middleware"
)

// Module serves an inner handler beneath a prefix such as "/api". Its
// middleware is composed on first use, so Use must be called before the
// module serves requests.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	compose sync.Once
	handler http.Handler
}

// New panics when prefix is not a single "/name" segment.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(fmt.Sprintf("module %q: %v", prefix, err))
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped in the middleware stack.
func (m *Module) Handler() http.Handler {
	m.compose.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve dispatches req with the prefix removed from its path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	inner.URL.RawPath = ""
	m.Handler().ServeHTTP(w, inner)
}

// Use appends middleware to the stack, outermost first.
func (m *Module) Use(layers ...middleware.Middleware) {
	m.middleware.Use(layers...)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return errors.New("prefix cannot be empty")
	case prefix[0] != '/':
		return errors.New("prefix must start with /")
	case len(prefix) == 1 || strings.Contains(prefix[1:], "/"):
		return errors.New("prefix must be a single path segment")
	}
	return nil
}
