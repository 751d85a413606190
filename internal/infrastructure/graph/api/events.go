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

// Event represents a calendar event returned by the Graph API.
type Event struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	Organizer        *Recipient     `json:"organizer"`
	Start            *DateTimeZone  `json:"start"`
	End              *DateTimeZone  `json:"end"`
	SeriesMasterID   string         `json:"seriesMasterId"`
	OnlineMeetingURL string         `json:"onlineMeetingUrl"`
	OnlineMeeting    *OnlineMeeting `json:"onlineMeeting"`
}

// Recipient wraps an email address on an event.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is an address plus optional directory identity.
type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	ID      string `json:"id"`
}

// DateTimeZone is Graph's zoned timestamp representation.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// OnlineMeeting carries the join reference embedded in an event.
type OnlineMeeting struct {
	JoinURL string `json:"joinUrl"`
}

// GetEvent fetches a calendar event's details for a user.
// This is a pure API call with no business logic.
func (c *Client) GetEvent(ctx context.Context, userID, eventID string) (*Event, error) {
	path := fmt.Sprintf("/users/%s/events/%s", userID, eventID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, domain.NewUpstreamError("failed to fetch event", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("event not found")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewUpstreamError("failed to fetch event", parseErrorResponse(body))
	}

	var event Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, domain.NewUpstreamError("failed to decode event response", err)
	}

	return &event, nil
}

// JoinReference returns the event's online meeting join URL, checking the
// legacy top-level field first and falling back to the nested one. An empty
// result means the event is not (yet) an online meeting.
func (e *Event) JoinReference() string {
	if e.OnlineMeetingURL != "" {
		return e.OnlineMeetingURL
	}
	if e.OnlineMeeting != nil {
		return e.OnlineMeeting.JoinURL
	}
	return ""
}

// StartTime returns the event start normalized to a UTC instant, or nil.
func (e *Event) StartTime() *time.Time {
	return normalizeEventTime(e.Start)
}

// EndTime returns the event end normalized to a UTC instant, or nil.
func (e *Event) EndTime() *time.Time {
	return normalizeEventTime(e.End)
}

func normalizeEventTime(dtz *DateTimeZone) *time.Time {
	if dtz == nil {
		return nil
	}
	t, err := parseGraphTime(dtz.DateTime)
	if err != nil {
		return nil
	}
	return t
}

// OrganizerEmail returns the organizer's normalized (lower-cased by Graph)
// address, or "" when absent.
func (e *Event) OrganizerEmail() string {
	if e.Organizer == nil {
		return ""
	}
	return e.Organizer.EmailAddress.Address
}

// OrganizerObjectID returns the organizer's directory object id when the
// event carries one.
func (e *Event) OrganizerObjectID() string {
	if e.Organizer == nil {
		return ""
	}
	return e.Organizer.EmailAddress.ID
}
