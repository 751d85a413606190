// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain"
)

// TranscriptEntry is one fetchable transcript artifact of an online meeting.
type TranscriptEntry struct {
	ID                   string `json:"id"`
	TranscriptContentURL string `json:"transcriptContentUrl"`
	CreatedDateTime      string `json:"createdDateTime"`
}

// Created returns the entry's creation time normalized to UTC, or nil when
// absent or unparseable.
func (t *TranscriptEntry) Created() *time.Time {
	created, err := parseGraphTime(t.CreatedDateTime)
	if err != nil {
		return nil
	}
	return created
}

type transcriptList struct {
	Value []TranscriptEntry `json:"value"`
}

// ListTranscripts lists the transcripts available for an online meeting,
// addressed through the organizer's user id.
func (c *Client) ListTranscripts(ctx context.Context, userID, meetingID string) ([]TranscriptEntry, error) {
	path := fmt.Sprintf("/users/%s/onlineMeetings/%s/transcripts", userID, meetingID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, domain.NewUpstreamError("failed to list transcripts", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		// The meeting has no transcripts resource yet.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewUpstreamError("failed to list transcripts", parseErrorResponse(body))
	}

	var list transcriptList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, domain.NewUpstreamError("failed to decode transcripts response", err)
	}

	return list.Value, nil
}

// GetTranscriptContent downloads raw transcript text from an absolute content
// URL.
func (c *Client) GetTranscriptContent(ctx context.Context, contentURL string) (string, error) {
	if contentURL == "" {
		return "", domain.NewValidationError("contentURL is required")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", domain.NewUpstreamError("failed to fetch transcript content", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domain.NewUpstreamError("failed to fetch transcript content", parseErrorResponse(body))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewUpstreamError("failed to read transcript content", err)
	}

	return string(content), nil
}
