package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency whose reachability the health check reports.
type Pinger func(ctx context.Context) error

// MongoPinger checks the primary of client.
func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}

func RedisPinger(client *redis.Client) Pinger {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthPayload struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health pings every dependency. Any failure turns the answer into 503.
// GET /healthCheck
func (h *HealthHandler) Health(rc *RequestContext) (*Result, error) {
	ctx, cancel := context.WithTimeout(rc.Context(), healthTimeout)
	defer cancel()

	payload := HealthPayload{Status: "ok", Dependencies: make(map[string]string, len(h.checks))}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			payload.Dependencies[name] = "down"
			payload.Status = "degraded"
			continue
		}
		payload.Dependencies[name] = "up"
	}

	if payload.Status != "ok" {
		return &Result{Status: http.StatusServiceUnavailable, Message: "Service degraded", Data: payload}, nil
	}
	return OK("Service is healthy", payload), nil
}
