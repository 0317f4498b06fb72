package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// namedCheck pairs a dependency name with its checker.
type namedCheck struct {
	name    string
	checker HealthChecker
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks []namedCheck
}

// NewHealthHandler creates a new HealthHandler.
// A nil db or cache is reported as "not configured".
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		checks: []namedCheck{
			{name: "postgres", checker: db},
			{name: "redis", checker: cache},
		},
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every dependency concurrently and returns 200 only if all
// configured ones answer within the readiness timeout.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		healthy = true
	)

	// Failures are recorded per check, so the group never short-circuits.
	var g errgroup.Group
	for _, c := range h.checks {
		if c.checker == nil {
			results[c.name] = "not configured"
			continue
		}
		g.Go(func() error {
			status := "ok"
			if err := c.checker.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			results[c.name] = status
			if status != "ok" {
				healthy = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: "ok", Checks: results}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
