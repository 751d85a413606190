// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Meeting is the canonical record of an online meeting tracked through the
// transcript lifecycle. Exactly one row exists per MeetingID; duplicate
// notifications must not create a second row or regress Status.
type Meeting struct {
	MeetingID         string        `json:"meeting_id"`
	OrganizerEmail    string        `json:"organizer_email"`
	OrganizerObjectID string        `json:"organizer_object_id"`
	Subject           string        `json:"subject"`
	StartTime         *time.Time    `json:"start_time,omitempty"`
	EndTime           *time.Time    `json:"end_time,omitempty"`
	JoinURL           string        `json:"join_url,omitempty"`
	SeriesID          string        `json:"series_id,omitempty"`
	Status            MeetingStatus `json:"status"`
	TranscriptStatus  string        `json:"transcript_status,omitempty"`
	TranscriptURL     string        `json:"transcript_url,omitempty"`
	ArchivePath       string        `json:"archive_path,omitempty"`
	IsParent          bool          `json:"is_parent"`
	Notes             string        `json:"notes,omitempty"`
	LastCheckedAt     *time.Time    `json:"last_checked_at,omitempty"`
}

// MeetingStatus is the lifecycle phase of a meeting's transcript retrieval,
// carrying the retry counter as a typed value instead of encoding it in a
// parsed string column.
type MeetingStatus struct {
	Phase StatusPhase
	// Run is the 1-based polling run counter, meaningful only while
	// Phase == PhaseTranscriptRun.
	Run int
}

// StatusPhase enumerates the phases of the retrieval state machine.
type StatusPhase int

const (
	// PhaseIDFetched means the meeting was resolved and never polled.
	PhaseIDFetched StatusPhase = iota
	// PhaseTranscriptRun means the meeting is inside its bounded polling loop.
	PhaseTranscriptRun
	// PhaseTranscriptFailed is terminal: the retry budget is exhausted.
	PhaseTranscriptFailed
)

// Status string column values.
const (
	statusIDFetched        = "MEETING_ID_FETCHED"
	statusTranscriptFailed = "TRANSCRIPT_FAILED"
	statusRunPrefix        = "TRANSCRIPT_RUN_"
)

// StatusIDFetched is the initial status for a freshly resolved meeting.
func StatusIDFetched() MeetingStatus {
	return MeetingStatus{Phase: PhaseIDFetched}
}

// StatusTranscriptRun returns the status for polling run k.
func StatusTranscriptRun(k int) MeetingStatus {
	return MeetingStatus{Phase: PhaseTranscriptRun, Run: k}
}

// StatusTranscriptFailed is the terminal exhausted-retries status.
func StatusTranscriptFailed() MeetingStatus {
	return MeetingStatus{Phase: PhaseTranscriptFailed}
}

// Next computes the status after one polling run. The transition is monotone:
// IDFetched starts the loop at run 1, each run advances the counter by one
// until maxRetries, and the failed state is absorbing. Archival success does
// not feed into the transition; the counter advances regardless.
func (s MeetingStatus) Next(maxRetries int) MeetingStatus {
	switch s.Phase {
	case PhaseIDFetched:
		return StatusTranscriptRun(1)
	case PhaseTranscriptRun:
		if s.Run < maxRetries {
			return StatusTranscriptRun(s.Run + 1)
		}
		return StatusTranscriptFailed()
	default:
		return StatusTranscriptFailed()
	}
}

// Terminal reports whether the status can no longer advance.
func (s MeetingStatus) Terminal() bool {
	return s.Phase == PhaseTranscriptFailed
}

// String renders the status in its store column form.
func (s MeetingStatus) String() string {
	switch s.Phase {
	case PhaseIDFetched:
		return statusIDFetched
	case PhaseTranscriptRun:
		return statusRunPrefix + strconv.Itoa(s.Run)
	default:
		return statusTranscriptFailed
	}
}

// ParseMeetingStatus parses a status column value. A malformed run counter
// parses to the failed status so that a corrupt row can never loop forever.
func ParseMeetingStatus(raw string) MeetingStatus {
	switch {
	case raw == statusIDFetched:
		return StatusIDFetched()
	case strings.HasPrefix(raw, statusRunPrefix):
		run, err := strconv.Atoi(strings.TrimPrefix(raw, statusRunPrefix))
		if err != nil || run < 1 {
			return StatusTranscriptFailed()
		}
		return StatusTranscriptRun(run)
	default:
		return StatusTranscriptFailed()
	}
}

// Tags generates a consistent set of log/search tags for the meeting.
func (m *Meeting) Tags() []string {
	if m == nil {
		return nil
	}

	tags := []string{}
	if m.MeetingID != "" {
		tags = append(tags, m.MeetingID, fmt.Sprintf("meeting_id:%s", m.MeetingID))
	}
	if m.OrganizerEmail != "" {
		tags = append(tags, fmt.Sprintf("organizer_email:%s", m.OrganizerEmail))
	}
	if m.SeriesID != "" {
		tags = append(tags, fmt.Sprintf("series_id:%s", m.SeriesID))
	}
	return tags
}
