// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package constants

import "time"

// Retrieval and renewal tunables. These are defaults only; each driver takes
// its effective values from its config struct.
const (
	// DefaultMaxTranscriptRetries is the number of polling runs a meeting gets
	// before it is marked failed.
	DefaultMaxTranscriptRetries = 96

	// DefaultInterMeetingDelay rate-limits transcript polling against the
	// directory API between consecutive meetings.
	DefaultInterMeetingDelay = 2 * time.Second

	// DefaultTranscriptPollInterval is the period of the transcript retrieval driver.
	DefaultTranscriptPollInterval = 15 * time.Minute

	// DefaultRenewalInterval is the period of the subscription renewal driver.
	// It must stay shorter than DefaultSubscriptionExpiry.
	DefaultRenewalInterval = 24 * time.Hour

	// DefaultSubscriptionExpiry is the lifetime requested for change
	// notification subscriptions.
	DefaultSubscriptionExpiry = 70 * time.Hour

	// DefaultRenewalWorkers bounds concurrent in-flight renewal requests.
	DefaultRenewalWorkers = 10

	// DefaultUserSyncInterval is the period of the directory user sync driver.
	DefaultUserSyncInterval = 24 * time.Hour
)

// Messaging subjects for lifecycle events published after registry writes.
const (
	MeetingIngestSubject       = "meetings.meeting-ingest"
	TranscriptArchivedSubject  = "meetings.transcript-archived"
	SubscriptionRenewedSubject = "meetings.subscription-renewed"
)
