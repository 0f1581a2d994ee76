package routes

import (
	"net/http"

	"github.com/JaimeStill/marlin/pkg/openapi"
)

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk("", groups, func(path string, route Route) {
		mux.HandleFunc(route.Method+" "+path, route.Handler)
	})
}

// Describe adds every documented route to spec, with paths rooted at base.
func Describe(spec *openapi.Spec, base string, groups ...Group) {
	walk(base, groups, func(path string, route Route) {
		if route.OpenAPI != nil {
			spec.AddOperation(path, route.Method, route.OpenAPI)
		}
	})
}

func walk(parentPrefix string, groups []Group, fn func(path string, route Route)) {
	for _, group := range groups {
		fullPrefix := parentPrefix + group.Prefix
		for _, route := range group.Routes {
			fn(fullPrefix+route.Pattern, route)
		}
		walk(fullPrefix, group.Children, fn)
	}
}
