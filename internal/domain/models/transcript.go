// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

import "time"

// TranscriptRecord marks a transcript content URL as archived. The URL is the
// idempotency key: an identical URL must never be processed twice. This
// assumes the upstream platform never reuses a content URL across distinct
// recordings.
type TranscriptRecord struct {
	TranscriptURL string    `json:"transcript_url"`
	MeetingID     string    `json:"meeting_id"`
	ArchivePath   string    `json:"archive_path"`
	NotesPath     string    `json:"notes_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RenewalBatch summarizes one subscription renewal tick for downstream
// consumers.
type RenewalBatch struct {
	EligibleUsers int       `json:"eligible_users"`
	Failures      int       `json:"failures"`
	ValidatedAt   time.Time `json:"validated_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}
