// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain"
)

// ChangeTypes requested for event subscriptions.
const SubscriptionChangeTypes = "created,updated,deleted"

// SubscriptionRequest is the body for creating or renewing a change
// notification subscription.
type SubscriptionRequest struct {
	ChangeType         string `json:"changeType"`
	NotificationURL    string `json:"notificationUrl"`
	Resource           string `json:"resource"`
	ExpirationDateTime string `json:"expirationDateTime"`
	ClientState        string `json:"clientState"`
}

// Subscription is the platform's representation of an active subscription.
type Subscription struct {
	ID                 string `json:"id"`
	Resource           string `json:"resource"`
	ExpirationDateTime string `json:"expirationDateTime"`
}

// NewEventSubscriptionRequest builds the standard subscription body for a
// user's calendar events. The expiry is serialized at seconds precision as
// the platform requires.
func NewEventSubscriptionRequest(userID, notificationURL, clientState string, expiresAt time.Time) *SubscriptionRequest {
	return &SubscriptionRequest{
		ChangeType:         SubscriptionChangeTypes,
		NotificationURL:    notificationURL,
		Resource:           "/users/" + userID + "/events",
		ExpirationDateTime: expiresAt.UTC().Format("2006-01-02T15:04:05Z"),
		ClientState:        clientState,
	}
}

// CreateSubscription creates or refreshes a change notification subscription.
// This is a pure API call with no business logic.
func (c *Client) CreateSubscription(ctx context.Context, request *SubscriptionRequest) (*Subscription, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/subscriptions", request)
	if err != nil {
		return nil, domain.NewUpstreamError("failed to create subscription", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewUpstreamError("failed to create subscription", parseErrorResponse(body))
	}

	var subscription Subscription
	if err := json.NewDecoder(resp.Body).Decode(&subscription); err != nil {
		return nil, domain.NewUpstreamError("failed to decode subscription response", err)
	}

	return &subscription, nil
}
