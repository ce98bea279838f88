// Package controllers holds the HTTP handlers.
package controllers

import (
	"context"
	"net/http"

	"github.com/doctorauto/patio-sync/api/responses"
)

// Pinger is the reachability probe a dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service liveness and datasource reachability.
type HealthController struct {
	db    Pinger
	redis Pinger
}

func NewHealthController(db, redis Pinger) *HealthController {
	return &HealthController{db: db, redis: redis}
}

// Live answers the liveness probe without touching any dependency.
func (c *HealthController) Live(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready answers the readiness probe. Dependencies are reported individually
// so a degraded probe still says which side is down.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]string{"service": "ok"}
	healthy := true

	if c.db != nil {
		status["database"] = "ok"
		if err := c.db.Ping(ctx); err != nil {
			status["database"] = "unreachable"
			healthy = false
		}
	}
	if c.redis != nil {
		status["redis"] = "ok"
		if err := c.redis.Ping(ctx); err != nil {
			status["redis"] = "unreachable"
			healthy = false
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	responses.WriteSuccessStatus(w, code, status)
}
