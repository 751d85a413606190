// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package service holds the lifecycle business logic: webhook notification
// resolution, transcript retrieval, subscription renewal, and directory sync.
package service

import (
	"time"

	"github.com/meetingharvest/transcript-service/pkg/constants"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration shared by the lifecycle services.
type ServiceConfig struct {
	// MaxTranscriptRetries is the polling-run budget per meeting.
	MaxTranscriptRetries int
	// InterMeetingDelay rate-limits transcript polling between meetings.
	InterMeetingDelay time.Duration
	// SubscriptionExpiry is the lifetime requested on renewal.
	SubscriptionExpiry time.Duration
	// RenewalWorkers bounds concurrent in-flight renewal requests.
	RenewalWorkers int
	// NotificationURL is the public webhook endpoint registered on subscriptions.
	NotificationURL string
	// ClientState is the shared secret echoed back in notifications.
	ClientState string
	// EmailDomain restricts directory sync to one organization domain when set.
	EmailDomain string
}

// Defaults fills zero values with the standard tunables.
func (c ServiceConfig) Defaults() ServiceConfig {
	if c.MaxTranscriptRetries == 0 {
		c.MaxTranscriptRetries = constants.DefaultMaxTranscriptRetries
	}
	if c.InterMeetingDelay == 0 {
		c.InterMeetingDelay = constants.DefaultInterMeetingDelay
	}
	if c.SubscriptionExpiry == 0 {
		c.SubscriptionExpiry = constants.DefaultSubscriptionExpiry
	}
	if c.RenewalWorkers == 0 {
		c.RenewalWorkers = constants.DefaultRenewalWorkers
	}
	return c
}
