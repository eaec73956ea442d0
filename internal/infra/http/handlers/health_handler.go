package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger is the lead store's liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueHealth reports the broker connection; nil when notifications are inline.
type QueueHealth interface {
	Healthy() bool
}

type HealthHandler struct {
	Store     Pinger
	Queue     QueueHealth
	Version   string
	StartTime time.Time
	now       func() time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(store Pinger, q QueueHealth, version string) *HealthHandler {
	return &HealthHandler{
		Store:     store,
		Queue:     q,
		Version:   version,
		StartTime: time.Now(),
		now:       time.Now,
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.Queue != nil {
		if h.Queue.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       h.now().Sub(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
