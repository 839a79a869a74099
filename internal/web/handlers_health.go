package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/logging"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Ingest   core.IngestLimiterStatus `json:"ingest"`
}

// handleHealth reports store reachability and ingest slot usage. An
// unreachable store answers 503 so load balancers drain the instance.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Ingest:   s.service.LimiterStatus(),
	}

	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			render.Status(r, http.StatusServiceUnavailable)
		}
	}

	render.JSON(w, r, resp)
}
