// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// UserRepository defines the registry operations over hosting users.
type UserRepository interface {
	// ListEligibleUsers returns users flagged as able to host meetings.
	ListEligibleUsers(ctx context.Context) ([]*models.User, error)

	// UpsertUser inserts or refreshes a user row keyed by user ID.
	UpsertUser(ctx context.Context, user *models.User) error

	// BulkUpdateValidation stamps lastValidatedAt/subscriptionExpiresAt for
	// every eligible user in a single statement.
	BulkUpdateValidation(ctx context.Context, validatedAt, expiresAt time.Time) error
}

// MeetingRepository defines the registry operations over canonical meetings.
// The one-row-per-meeting invariant is enforced by the store's uniqueness
// constraint, not by callers.
type MeetingRepository interface {
	// UpsertMeeting inserts or updates a meeting keyed by its canonical
	// meeting ID.
	UpsertMeeting(ctx context.Context, meeting *models.Meeting) error

	// ListPendingMeetings returns parent meetings whose status is still in the
	// retry family, i.e. exactly the ones the retrieval driver must advance.
	ListPendingMeetings(ctx context.Context) ([]*models.Meeting, error)

	// UpdateMeetingStatus persists a meeting's next lifecycle status.
	UpdateMeetingStatus(ctx context.Context, meetingID string, status models.MeetingStatus) error
}

// TranscriptRepository is the idempotency guard for transcript archival.
type TranscriptRepository interface {
	// TranscriptExists reports whether a content URL has already been archived.
	TranscriptExists(ctx context.Context, transcriptURL string) (bool, error)

	// RecordTranscript records an archived transcript keyed by its content URL.
	RecordTranscript(ctx context.Context, record *models.TranscriptRecord) error

	// SetNotesPath stamps the generated-notes path on an archived transcript.
	SetNotesPath(ctx context.Context, transcriptURL, notesPath string) error
}
