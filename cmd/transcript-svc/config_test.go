// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package main

import (
	"testing"
	"time"

	"github.com/meetingharvest/transcript-service/pkg/constants"
)

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "unset uses default", value: "", expected: constants.DefaultMaxTranscriptRetries},
		{name: "override applies", value: "48", expected: 48},
		{name: "non-numeric uses default", value: "lots", expected: constants.DefaultMaxTranscriptRetries},
		{name: "non-positive uses default", value: "0", expected: constants.DefaultMaxTranscriptRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_TRANSCRIPT_RETRIES", tt.value)
			if got := parseIntEnv("MAX_TRANSCRIPT_RETRIES", constants.DefaultMaxTranscriptRetries); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "unset uses default", value: "", expected: constants.DefaultInterMeetingDelay},
		{name: "override applies", value: "500ms", expected: 500 * time.Millisecond},
		{name: "malformed uses default", value: "soon", expected: constants.DefaultInterMeetingDelay},
		{name: "non-positive uses default", value: "-1s", expected: constants.DefaultInterMeetingDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INTER_MEETING_DELAY", tt.value)
			if got := parseDurationEnv("INTER_MEETING_DELAY", constants.DefaultInterMeetingDelay); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
