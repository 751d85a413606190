// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

import "time"

// User is a directory user eligible (or not) to host meetings. Rows are
// created and refreshed by the directory sync; the renewal driver reads the
// eligible set and stamps the validation timestamps.
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	CanHostMeetings       bool       `json:"can_host_meetings"`
	LastValidatedAt       *time.Time `json:"last_validated_at,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
}
