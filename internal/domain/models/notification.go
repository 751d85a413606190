// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

import "strings"

// ValidationEventSuffix marks a subscription validation handshake event. The
// platform delivers it as the only element of a batch and expects its
// validation code echoed back.
const ValidationEventSuffix = "SubscriptionValidationEvent"

// NotificationBatch is the inbound webhook payload: a batch of change
// notifications.
type NotificationBatch struct {
	Value []EventNotification `json:"value"`
}

// EventNotification is one change notification referencing a calendar event.
type EventNotification struct {
	EventType      string          `json:"eventType,omitempty"`
	ChangeType     string          `json:"changeType,omitempty"`
	SubscriptionID string          `json:"subscriptionId,omitempty"`
	ClientState    string          `json:"clientState,omitempty"`
	Resource       string          `json:"resource,omitempty"`
	ResourceData   *ResourceData   `json:"resourceData,omitempty"`
	Data           *ValidationData `json:"data,omitempty"`
}

// ResourceData carries the changed resource's identifier.
type ResourceData struct {
	ID string `json:"id"`
}

// ValidationData carries the handshake code for validation events.
type ValidationData struct {
	ValidationCode string `json:"validationCode"`
}

// ValidationResponse is the body echoed back for a validation handshake.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

// IsValidation reports whether the notification is a subscription validation
// handshake.
func (n *EventNotification) IsValidation() bool {
	return strings.HasSuffix(n.EventType, ValidationEventSuffix)
}

// UserID extracts the user identifier from the resource path, which has the
// form "users/{userId}/events/{eventId}". It returns "" when the path does
// not carry one.
func (n *EventNotification) UserID() string {
	parts := strings.Split(strings.TrimPrefix(n.Resource, "/"), "/")
	if len(parts) > 1 && parts[0] == "users" {
		return parts[1]
	}
	return ""
}

// EventID returns the calendar event identifier the notification refers to.
func (n *EventNotification) EventID() string {
	if n.ResourceData == nil {
		return ""
	}
	return n.ResourceData.ID
}

// IsValidationBatch reports whether the batch is exactly one validation
// handshake, and returns its code.
func (b *NotificationBatch) IsValidationBatch() (string, bool) {
	if len(b.Value) != 1 || !b.Value[0].IsValidation() {
		return "", false
	}
	if b.Value[0].Data == nil {
		return "", false
	}
	return b.Value[0].Data.ValidationCode, true
}
