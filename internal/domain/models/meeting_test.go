// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testMaxRetries = 96

func TestMeetingStatus_Next(t *testing.T) {
	tests := []struct {
		name     string
		status   MeetingStatus
		expected MeetingStatus
	}{
		{
			name:     "first poll starts the run loop",
			status:   StatusIDFetched(),
			expected: StatusTranscriptRun(1),
		},
		{
			name:     "run advances by exactly one",
			status:   StatusTranscriptRun(5),
			expected: StatusTranscriptRun(6),
		},
		{
			name:     "run just below the budget still advances",
			status:   StatusTranscriptRun(testMaxRetries - 1),
			expected: StatusTranscriptRun(testMaxRetries),
		},
		{
			name:     "exhausted budget fails",
			status:   StatusTranscriptRun(testMaxRetries),
			expected: StatusTranscriptFailed(),
		},
		{
			name:     "failed is absorbing",
			status:   StatusTranscriptFailed(),
			expected: StatusTranscriptFailed(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.Next(testMaxRetries))
		})
	}
}

func TestMeetingStatus_NeverRegresses(t *testing.T) {
	status := StatusIDFetched()
	previous := 0
	for i := 0; i < testMaxRetries+2; i++ {
		status = status.Next(testMaxRetries)
		if status.Phase == PhaseTranscriptRun {
			assert.Greater(t, status.Run, previous)
			previous = status.Run
		}
	}
	assert.True(t, status.Terminal())
}

func TestParseMeetingStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected MeetingStatus
	}{
		{"id fetched", "MEETING_ID_FETCHED", StatusIDFetched()},
		{"run 1", "TRANSCRIPT_RUN_1", StatusTranscriptRun(1)},
		{"run 96", "TRANSCRIPT_RUN_96", StatusTranscriptRun(96)},
		{"failed", "TRANSCRIPT_FAILED", StatusTranscriptFailed()},
		{"malformed run counter fails closed", "TRANSCRIPT_RUN_abc", StatusTranscriptFailed()},
		{"zero run counter fails closed", "TRANSCRIPT_RUN_0", StatusTranscriptFailed()},
		{"negative run counter fails closed", "TRANSCRIPT_RUN_-3", StatusTranscriptFailed()},
		{"unknown value fails closed", "SOMETHING_ELSE", StatusTranscriptFailed()},
		{"empty value fails closed", "", StatusTranscriptFailed()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseMeetingStatus(tt.raw))
		})
	}
}

func TestMeetingStatus_StringRoundTrip(t *testing.T) {
	for _, status := range []MeetingStatus{
		StatusIDFetched(),
		StatusTranscriptRun(1),
		StatusTranscriptRun(42),
		StatusTranscriptFailed(),
	} {
		assert.Equal(t, status, ParseMeetingStatus(status.String()))
	}
}

func TestMalformedStatusTransitionsToFailed(t *testing.T) {
	// A corrupt status column must deterministically land on the terminal
	// state after one transition, never loop.
	status := ParseMeetingStatus("TRANSCRIPT_RUN_abc")
	assert.Equal(t, StatusTranscriptFailed(), status.Next(testMaxRetries))
}

func TestMeeting_Tags(t *testing.T) {
	m := &Meeting{
		MeetingID:      "mtg-123",
		OrganizerEmail: "a@b.com",
		SeriesID:       "series-9",
	}
	tags := m.Tags()
	assert.Contains(t, tags, "mtg-123")
	assert.Contains(t, tags, "meeting_id:mtg-123")
	assert.Contains(t, tags, "organizer_email:a@b.com")
	assert.Contains(t, tags, "series_id:series-9")

	var nilMeeting *Meeting
	assert.Nil(t, nilMeeting.Tags())
}
