package server

import (
	"net/http"
	"sort"
)

// RouteDoc describes one registered endpoint for the self-documenting
// /api/routes listing. Route carries the full mux pattern, method
// included, exactly as it was registered.
type RouteDoc struct {
	Route       string `json:"route"`
	Summary     string `json:"summary,omitempty"`
	ExampleBody string `json:"example_body,omitempty"`
}

// RouteRegistry collects RouteDocs as handlers are mounted. The zero
// value is ready to use.
type RouteRegistry struct {
	routes []RouteDoc
}

// List returns the registered docs sorted by route so the listing is
// stable regardless of registration order.
func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Route < out[j].Route
	})
	return out
}

// Handle mounts h on mux under the Go 1.22 "METHOD /pattern" form and
// records it in the registry.
func Handle(mux *http.ServeMux, rr *RouteRegistry, route, summary, exampleBody string, h http.HandlerFunc) {
	rr.routes = append(rr.routes, RouteDoc{
		Route:       route,
		Summary:     summary,
		ExampleBody: exampleBody,
	})
	mux.HandleFunc(route, h)
}
