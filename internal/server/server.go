package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers.
// Implementations handle specific endpoints (OAuth callback, status).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Logging returns middleware that logs each request's method, path, and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// CallbackServer is a short-lived localhost HTTP server for OAuth flows.
//
// Start the server, wait on the handler's result channel, then Shutdown.
type CallbackServer struct {
	srv    *http.Server
	logger *log.Logger
}

// NewCallbackServer creates a callback server listening on host:port with the
// given router as its handler.
func NewCallbackServer(host string, port int, router Router, logger *log.Logger) *CallbackServer {
	return &CallbackServer{
		srv: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", host, port),
			Handler: router,
		},
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (c *CallbackServer) Start() {
	go func() {
		if err := c.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("callback server failed", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (c *CallbackServer) Shutdown(ctx context.Context) error {
	return c.srv.Shutdown(ctx)
}
