package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks are passing.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusUnhealthy indicates at least one check is failing.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// CheckFunc is a function that performs a health check.
// Returns nil if healthy, or an error describing the problem.
type CheckFunc func() error

// HealthCheck aggregates named readiness checks.
type HealthCheck struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startTime time.Time
	version   string
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// NewHealthCheck creates a new health check instance.
func NewHealthCheck(version string) *HealthCheck {
	return &HealthCheck{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
		version:   version,
	}
}

// AddCheck registers a named health check.
func (h *HealthCheck) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RemoveCheck removes a named health check.
func (h *HealthCheck) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checks, name)
}

// Check runs every check in name order and returns the overall status.
func (h *HealthCheck) Check() HealthResponse {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	checks := make(map[string]CheckFunc, len(h.checks))
	for k, v := range h.checks {
		names = append(names, k)
		checks[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	response := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Version:   h.version,
		Checks:    make(map[string]CheckResult, len(names)),
	}

	for _, name := range names {
		start := time.Now()
		err := checks[name]()
		result := CheckResult{
			Status:  HealthStatusHealthy,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			result.Status = HealthStatusUnhealthy
			result.Message = err.Error()
			response.Status = HealthStatusUnhealthy
		}
		response.Checks[name] = result
	}

	return response
}

// Handler returns an http.Handler reporting every check.
func (h *HealthCheck) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := h.Check()
		status := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	})
}

// LivenessHandler returns a simple liveness probe handler.
// Returns 200 OK if the process is serving requests.
func (h *HealthCheck) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
}

// ReadinessHandler returns a readiness probe handler.
// Returns 200 OK only if all health checks pass.
func (h *HealthCheck) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := h.Check()
		ready := response.Status != HealthStatusUnhealthy
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{
			"status": response.Status,
			"ready":  ready,
			"checks": response.Checks,
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Server ---

// Server provides HTTP endpoints for metrics and health, and hosts
// additional routes mounted by the caller.
type Server struct {
	router    chi.Router
	health    *HealthCheck
	collector *Collector
	logger    *Logger
}

// ServerConfig configures the observability server.
type ServerConfig struct {
	Collector *Collector
	Logger    *Logger
	Version   string
}

// NewServer creates a new observability server with /metrics, /health,
// /healthz and /readyz routes.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = NullLogger()
	}

	s := &Server{
		router:    chi.NewRouter(),
		health:    NewHealthCheck(cfg.Version),
		collector: cfg.Collector,
		logger:    cfg.Logger.Named("http"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	if cfg.Collector != nil {
		s.router.Method(http.MethodGet, "/metrics", cfg.Collector.Handler())
	}
	s.router.Method(http.MethodGet, "/health", s.health.Handler())
	s.router.Method(http.MethodGet, "/healthz", s.health.LivenessHandler())
	s.router.Method(http.MethodGet, "/readyz", s.health.ReadinessHandler())

	return s
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

// Mount attaches handler under pattern.
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.router.Mount(pattern, handler)
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AddHealthCheck adds a readiness check to the server.
func (s *Server) AddHealthCheck(name string, check CheckFunc) {
	s.health.AddCheck(name, check)
}

// HTTPServer returns an *http.Server for addr with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return newHTTPServer(addr, s.router)
}
