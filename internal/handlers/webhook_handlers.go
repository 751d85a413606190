// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package handlers exposes the webhook and health HTTP surface.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/logging"
	"github.com/meetingharvest/transcript-service/internal/service"
)

// WebhookHandler handles inbound change notification webhooks.
type WebhookHandler struct {
	notificationService *service.NotificationService
	// clientState, when set, must match the clientState echoed on each
	// notification; mismatched items are dropped.
	clientState string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(notificationService *service.NotificationService, clientState string) *WebhookHandler {
	return &WebhookHandler{
		notificationService: notificationService,
		clientState:         clientState,
	}
}

// HandlerReady reports whether the handler's services are wired.
func (h *WebhookHandler) HandlerReady() bool {
	return h.notificationService != nil && h.notificationService.ServiceReady()
}

// HandleNotifications is the POST /webhooks/events endpoint. It answers the
// subscription validation handshake synchronously, and otherwise accepts the
// batch with 202 once processed; per-item failures never surface as an HTTP
// error.
func (h *WebhookHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The platform also validates endpoints with a plain token echo.
	if token := r.URL.Query().Get("validationToken"); token != "" {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(token))
		return
	}

	var batch models.NotificationBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		slog.WarnContext(ctx, "unparseable webhook payload", logging.ErrKey, err)
		writeJSONError(w, http.StatusBadRequest, "invalid notification payload")
		return
	}

	if code, ok := batch.IsValidationBatch(); ok {
		writeJSON(w, http.StatusOK, models.ValidationResponse{ValidationResponse: code})
		return
	}

	batch.Value = h.authorizedNotifications(ctx, batch.Value)

	if err := h.notificationService.ProcessBatch(ctx, &batch); err != nil {
		switch domain.GetErrorType(err) {
		case domain.ErrorTypeValidation:
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			// Token acquisition or service wiring failure: nothing in the
			// batch could be processed, so ask the platform to redeliver.
			writeJSONError(w, http.StatusInternalServerError, "notification batch not processed")
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// authorizedNotifications filters out notifications whose clientState does
// not match the secret registered on the subscription.
func (h *WebhookHandler) authorizedNotifications(ctx context.Context, items []models.EventNotification) []models.EventNotification {
	if h.clientState == "" {
		return items
	}

	kept := items[:0]
	for i := range items {
		if items[i].ClientState != h.clientState {
			slog.WarnContext(ctx, "dropping notification with mismatched client state",
				"subscription_id", items[i].SubscriptionID,
			)
			continue
		}
		kept = append(kept, items[i])
	}
	return kept
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
