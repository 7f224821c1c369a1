package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness plus the state of optional backends.
type HealthHandler struct {
	db     *sql.DB
	redis  *redis.Client
	logger *logging.Logger
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

// NewHealthHandler creates a health handler. db and redis may be nil.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	check := func(name string, err error) {
		if resp.Backends == nil {
			resp.Backends = make(map[string]string)
		}
		if err != nil {
			h.logger.Warn("health check failed", "backend", name, "error", err)
			resp.Status = "degraded"
			resp.Backends[name] = "down"
			return
		}
		resp.Backends[name] = "up"
	}
	if h.db != nil {
		check("postgres", h.db.PingContext(ctx))
	}
	if h.redis != nil {
		check("redis", h.redis.Ping(ctx).Err())
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
