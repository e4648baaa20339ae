// Package server exposes the floor registry over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/elipaulman/hack-ohio-2025/floors"
)

// ReloadFunc rebuilds the registry, reporting floors that failed to load.
type ReloadFunc func(ctx context.Context) (*floors.Registry, floors.LoadErrors, error)

// Options configures the HTTP surface.
type Options struct {
	RouteTimeout   time.Duration // 0 disables the timeout on /api/route
	AllowedOrigins []string      // nil allows every origin
}

// Server serves routes from the registry currently held by a Store.
type Server struct {
	store  *floors.Store
	reload ReloadFunc
	opts   Options
}

// New creates a server. reload may be nil, in which case POST /api/reload is
// not registered.
func New(store *floors.Store, reload ReloadFunc, opts Options) *Server {
	return &Server{store: store, reload: reload, opts: opts}
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, logMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "not_found", "no such endpoint")
	})

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/floors", s.floorsHandler).Methods(http.MethodGet)
	api.HandleFunc("/floors/{floor}/rooms", s.roomsHandler).Methods(http.MethodGet)
	api.HandleFunc("/floors/{floor}/navigation", s.navigationHandler).Methods(http.MethodGet)
	api.HandleFunc("/floors/{floor}/geojson", s.geojsonHandler).Methods(http.MethodGet)
	api.HandleFunc("/floors/{floor}/closest", s.closestHandler).Methods(http.MethodGet)

	var route http.Handler = http.HandlerFunc(s.routeHandler)
	if s.opts.RouteTimeout > 0 {
		route = jsonTimeout(route, s.opts.RouteTimeout)
	}
	api.Handle("/route", route).Methods(http.MethodGet)

	if s.reload != nil {
		api.HandleFunc("/reload", s.reloadHandler).Methods(http.MethodPost)
	}

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(r)
}

const timeoutBody = `{"error":"route computation timed out","code":"timeout"}`

// jsonTimeout is http.TimeoutHandler with a JSON content type on the 503
// body it writes when h runs past d.
func jsonTimeout(h http.Handler, d time.Duration) http.Handler {
	th := http.TimeoutHandler(h, d, timeoutBody)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		th.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
