package handlers

import "net/http"

// Route is one entry of the route listing served at the root path.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// RootHandler lists the routes of the service.
type RootHandler struct {
	routes []Route
}

// NewRootHandler creates a handler listing routes in the given order.
func NewRootHandler(routes []Route) *RootHandler {
	return &RootHandler{routes: routes}
}

// List handles GET / and returns a JSON array of {path, name}.
func (h *RootHandler) List(w http.ResponseWriter, r *http.Request) {
	routes := h.routes
	if routes == nil {
		routes = []Route{}
	}
	WriteJSONOK(w, routes)
}
