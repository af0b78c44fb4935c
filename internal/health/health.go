// Package health serves liveness and readiness probes for the screener.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/adapters/database"
	redisAdapter "github.com/selivandex/rsi-screener/internal/adapters/redis"
	"github.com/selivandex/rsi-screener/pkg/logger"
)

// Server exposes /health and /ready (plus z-suffixed aliases) over a
// dedicated HTTP listener
type Server struct {
	server    *http.Server
	db        *database.DB
	redis     *redisAdapter.Client
	repo      *database.Repository
	readyMu   sync.RWMutex
	ready     bool
	startTime time.Time
}

// HealthStatus is the liveness payload
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus is the readiness payload
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Refresh   RefreshStatus     `json:"refresh"`
}

// RefreshStatus reports the most recent screening cycle
type RefreshStatus struct {
	LastRefreshAt string `json:"last_refresh_at,omitempty"`
	Age           string `json:"age,omitempty"`
}

// NewServer creates the probe server. It starts not-ready; the entrypoint
// flips readiness once initialization completes.
func NewServer(
	addr string,
	db *database.DB,
	redis *redisAdapter.Client,
	repo *database.Repository,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		db:        db,
		redis:     redis,
		repo:      repo,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReadiness)
	mux.HandleFunc("/readyz", s.handleReadiness)

	return s
}

// Start serves probes until Stop
func (s *Server) Start() error {
	logger.Info("health server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SetReady flips the readiness gate
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	s.ready = ready
	s.readyMu.Unlock()

	if ready {
		logger.Info("service marked ready")
	} else {
		logger.Warn("service marked not ready")
	}
}

// checkDependencies probes postgres and redis with their short deadlines
func (s *Server) checkDependencies() (map[string]string, bool) {
	checks := make(map[string]string)
	healthy := true

	if err := s.db.Health(); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if err := s.redis.Health(); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["redis"] = "healthy"
	}

	return checks, healthy
}

// handleHealth answers the liveness probe. Always 200 while the process
// runs; dependency state is only attached with ?verbose=true.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.Checks, _ = s.checkDependencies()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// handleReadiness answers the readiness probe: 200 only when startup has
// completed and both stores respond
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks, healthy := s.checkDependencies()

	// Last refresh age is informational only. A stale refresh does not flip
	// readiness: another replica may hold the lock.
	refresh := RefreshStatus{}
	if lastRefresh, err := s.repo.LastRefreshAt(r.Context()); err == nil && !lastRefresh.IsZero() {
		refresh.LastRefreshAt = lastRefresh.UTC().Format(time.RFC3339)
		refresh.Age = time.Since(lastRefresh).Round(time.Second).String()
	}

	isReady := ready && healthy

	status := ReadinessStatus{
		Ready:     isReady,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Refresh:   refresh,
	}

	w.Header().Set("Content-Type", "application/json")
	if isReady {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
