package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/google/uuid"
	graphqlgo "github.com/graph-gophers/graphql-go"
	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/time/rate"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/health"
	"github.com/navith/genreguide/metric"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

// Server serves the GraphQL endpoint, the playground and the health report
type Server struct {
	config  Config
	schema  *graphqlgo.Schema
	monitor *health.Monitor
	metrics *metric.Metrics
	logger  *slog.Logger

	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler
	limiter    *rate.Limiter // nil when rate limiting is off

	// Lifecycle
	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewServer creates a new GraphQL HTTP server. monitor and metrics may be nil.
func NewServer(config Config, schema *graphqlgo.Schema, monitor *health.Monitor,
	metrics *metric.Metrics, logger *slog.Logger,
) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Server", "NewServer", "config validation")
	}

	if schema == nil {
		return nil, errors.WrapFatal(fmt.Errorf("schema is nil"), "Server", "NewServer",
			"schema is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		schema:   schema,
		monitor:  monitor,
		metrics:  metrics,
		logger:   logger.With("component", "graphql"),
		mux:      http.NewServeMux(),
		stopChan: make(chan struct{}),
	}
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	if s.config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.config.RateLimit), s.config.RateBurst)
	}

	s.mux.Handle(s.config.Path, http.HandlerFunc(s.handleGraphQL))
	s.mux.HandleFunc("/health", s.handleHealth)

	if s.config.EnablePlayground {
		s.mux.Handle("/", playground.Handler("genreguide", s.config.Path))
		s.logger.Info("GraphQL Playground enabled",
			"url", fmt.Sprintf("http://%s/", s.config.BindAddress))
	}

	var handler http.Handler = s.mux
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	s.handler = s.requestIDMiddleware(handler)

	// The write timeout leaves room to report a request that ran out of time.
	s.httpServer = &http.Server{
		Addr:              s.config.BindAddress,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.Timeout(),
		WriteTimeout:      s.config.Timeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("Server configured",
		"address", s.config.BindAddress,
		"path", s.config.Path,
		"timeout", s.config.Timeout())
}

// Handler returns the full middleware chain, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, Stop is called or the listener fails.
// The ready channel is closed once the server is about to accept connections.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Server", "Start", "server already running")
	}
	s.running = true
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("Server starting", "address", s.config.BindAddress)

		if ready != nil {
			close(ready)
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
			select {
			case errChan <- err:
			case <-ctx.Done():
			case <-s.stopChan:
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Server context cancelled, shutting down")
		return s.Stop(30 * time.Second)

	case <-s.stopChan:
		s.logger.Info("Server stop requested")
		return nil

	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return errors.WrapFatal(err, "Server", "Start", "HTTP server failed")
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Server stopping")

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server gracefully", "error", err)
		return errors.WrapTransient(err, "Server", "Stop", "graceful shutdown failed")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Server stopped")
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func decodeRequest(r *http.Request) (graphqlRequest, error) {
	var req graphqlRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, fmt.Errorf("variables: %w", err)
			}
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("body: %w", err)
		}
	}
	if req.Query == "" {
		return req, fmt.Errorf("query is required")
	}
	return req, nil
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if s.limiter != nil && !s.limiter.Allow() {
		s.recordQuery("rate_limited", start)
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"errors": []map[string]string{{"message": "rate limit exceeded"}},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := decodeRequest(r)
	if err != nil {
		s.recordQuery("bad_request", start)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout())
	defer cancel()

	resp := s.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if err := ctx.Err(); err != nil {
		operation := req.OperationName
		if operation == "" {
			operation = "query"
		}
		codeContextErrors(resp.Errors, err, operation)
	}

	status := "ok"
	if len(resp.Errors) > 0 {
		status = "error"
		slogcontext.FromCtx(ctx).Debug("Query returned errors",
			"operation_name", req.OperationName,
			"errors", len(resp.Errors))
	}
	s.recordQuery(status, start)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordQuery(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordQuery(status, time.Since(start))
	}
}

// handleHealth reports the aggregated health of the monitored components
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.monitor == nil {
		writeJSON(w, http.StatusOK, health.NewHealthy("genreguide", "no checks registered"))
		return
	}

	status := s.monitor.AggregateHealth("genreguide")
	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestIDMiddleware tags the request with an id and puts a logger carrying
// it into the request context.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		next.ServeHTTP(w, r.WithContext(slogcontext.NewCtx(r.Context(), logger)))
	})
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range s.config.CORSOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
