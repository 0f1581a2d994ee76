package module

import (
	"net/http"
	"strings"
)

// Router sends /<prefix>/... to the module mounted at that prefix. Other
// paths go to the native mux, or to the root module when no native
// pattern matches.
type Router struct {
	mounted map[string]*Module
	native  *http.ServeMux
	root    *Module
}

func NewRouter() *Router {
	return &Router{
		mounted: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers an unprefixed handler such as a health check.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

func (r *Router) Mount(m *Module) {
	r.mounted[m.Prefix()] = m
}

// Root also serves m at the top level. A module may be both mounted and
// root; it composes its middleware once either way.
func (r *Router) Root(m *Module) {
	r.root = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	trimTrailingSlash(req)

	if m, ok := r.mounted[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	if r.root != nil && !r.claimed(req) {
		r.root.Handler().ServeHTTP(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func (r *Router) claimed(req *http.Request) bool {
	_, pattern := r.native.Handler(req)
	return pattern != ""
}

// firstSegment returns "/api" for "/api/search" and "/" for "/".
func firstSegment(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return "/" + seg
}

func trimTrailingSlash(req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}
}
