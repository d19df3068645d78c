package server

import (
	"net/http"
	"strings"
)

// route pairs a handler with an optional method restriction.
type route struct {
	method  string // empty accepts any method
	handler http.Handler
}

// BasicRouter implements [Router] with an exact-match path table.
//
// The callback server exposes a handful of fixed paths, so routes are looked
// up directly and middleware is applied at serve time, letting Use calls take
// effect regardless of registration order.
type BasicRouter struct {
	middlewares []Middleware
	routes      map[string]route
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{routes: map[string]route{}}
}

// Use adds [Middleware] to the router's stack, applied in the order added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the given HTTP method and path. Requests to
// the path with a different method are answered with 405.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.routes[path] = route{method: method, handler: handler}
}

// Handler registers every path from [Handler.Routes] with no method restriction.
func (r *BasicRouter) Handler(handler Handler) {
	for _, path := range handler.Routes() {
		r.routes[path] = route{handler: handler}
	}
}

// ServeHTTP resolves the request path and dispatches through the middleware stack.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rt, ok := r.routes[req.URL.Path]
	if !ok {
		http.NotFound(w, req)
		return
	}
	if rt.method != "" && !strings.EqualFold(req.Method, rt.method) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	handler := rt.handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	handler.ServeHTTP(w, req)
}
