// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/meetingharvest/transcript-service/internal/infrastructure/messaging"
	"github.com/meetingharvest/transcript-service/internal/logging"
)

// ReadinessChecker reports whether a dependency is reachable.
type ReadinessChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the /livez and /readyz probes.
type HealthHandler struct {
	webhookHandler *WebhookHandler
	db             ReadinessChecker
	bus            messaging.INatsConn
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(webhookHandler *WebhookHandler, db ReadinessChecker, bus messaging.INatsConn) *HealthHandler {
	return &HealthHandler{
		webhookHandler: webhookHandler,
		db:             db,
		bus:            bus,
	}
}

// HandleLivez answers liveness: the process is up and serving.
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleReadyz answers readiness: services wired and the registry reachable.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.webhookHandler == nil || !h.webhookHandler.HandlerReady() {
		http.Error(w, "services not initialized", http.StatusServiceUnavailable)
		return
	}

	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(pingCtx); err != nil {
			slog.ErrorContext(ctx, "registry unreachable", logging.ErrKey, err)
			http.Error(w, "registry unreachable", http.StatusServiceUnavailable)
			return
		}
	}

	if h.bus != nil && !h.bus.IsConnected() {
		http.Error(w, "message bus disconnected", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
