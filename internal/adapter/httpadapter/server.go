package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WelcomeMessage is the body served at GET /.
const WelcomeMessage = "Welcome to the Climate Insurance Backend API. Use the /adjust endpoint to adjust YLT data."

// maxLoggedBody caps how much of a POST /adjust body is read for debug logging.
const maxLoggedBody = 64 << 10

// Adjuster runs one adjustment and returns the truncated result encoded as a
// JSON array of records.
type Adjuster interface {
	Adjust(ctx context.Context) ([]byte, error)
}

// Server exposes the adjustment endpoint plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	adjuster   Adjuster
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /adjust, /healthz, /readyz, and /metrics routes.
// A zero writeTimeout leaves responses unbounded, since adjustments can run for minutes.
func NewServer(addr string, writeTimeout time.Duration, adjuster Adjuster, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		adjuster: adjuster,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /adjust", s.handleAdjust)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, WelcomeMessage) //nolint:errcheck // best-effort static response
}

// handleAdjust ignores the request body beyond logging it. The response is
// either the full JSON array or a single error object, never a partial body.
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	s.logger.Debug("received request", "body", string(body))

	data, err := s.adjuster.Adjust(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client may have gone away
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error("error during adjustment process", "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
