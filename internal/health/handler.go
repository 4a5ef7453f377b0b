// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

const checkTimeout = 5 * time.Second

type Handler struct {
	db       Pinger
	redis    Pinger
	started  time.Time
	ready    atomic.Bool
	shutdown atomic.Bool
}

// NewHandler starts not-ready; the entrypoint flips it once routing is
// wired and the listener is up.
func NewHandler(db, redis Pinger) *Handler {
	return &Handler{
		db:      db,
		redis:   redis,
		started: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.write(w, http.StatusServiceUnavailable, LivenessResponse{
			Status: "shutting_down",
		})
		return
	}

	h.write(w, http.StatusOK, LivenessResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness pings the backing stores in parallel. A degraded dependency
// flips the whole endpoint to 503 so the balancer stops routing here.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.write(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.write(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.check(ctx)

	status := "ok"
	code := http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	h.write(w, code, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *Handler) check(ctx context.Context) []DependencyCheck {
	deps := []struct {
		name   string
		pinger Pinger
	}{
		{"database", h.db},
		{"redis", h.redis},
	}

	var wg sync.WaitGroup
	checks := make([]DependencyCheck, len(deps))

	for i, dep := range deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = pingDependency(ctx, dep.name, dep.pinger)
		}()
	}

	wg.Wait()
	return checks
}

func pingDependency(
	ctx context.Context,
	name string,
	pinger Pinger,
) DependencyCheck {
	check := DependencyCheck{Name: name, Healthy: true}

	if pinger == nil {
		check.Healthy = false
		check.Message = "not configured"
		return check
	}

	start := time.Now()
	err := pinger.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type LivenessResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks []DependencyCheck `json:"checks,omitempty"`
}

type DependencyCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
