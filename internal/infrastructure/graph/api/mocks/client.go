// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
)

// MockClient is a mock implementation of the Graph API client for testing.
// Each call delegates to the corresponding Func field when set, falling back
// to a benign default otherwise.
type MockClient struct {
	AcquireTokenFunc         func(ctx context.Context) (*oauth2.Token, error)
	GetEventFunc             func(ctx context.Context, userID, eventID string) (*api.Event, error)
	ResolveMeetingIDFunc     func(ctx context.Context, userID, joinURL string) (string, error)
	GetUserObjectIDFunc      func(ctx context.Context, email string) (string, error)
	ListUsersFunc            func(ctx context.Context) ([]api.DirectoryUser, error)
	UserCanHostMeetingsFunc  func(ctx context.Context, userID string) (bool, error)
	ListTranscriptsFunc      func(ctx context.Context, userID, meetingID string) ([]api.TranscriptEntry, error)
	GetTranscriptContentFunc func(ctx context.Context, contentURL string) (string, error)
	CreateSubscriptionFunc   func(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error)
}

// NewMockClient creates a new mock client with default implementations.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// AcquireToken mocks token acquisition, returning a long-lived test token.
func (m *MockClient) AcquireToken(ctx context.Context) (*oauth2.Token, error) {
	if m.AcquireTokenFunc != nil {
		return m.AcquireTokenFunc(ctx)
	}
	return &oauth2.Token{
		AccessToken: "test-access-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

// GetEvent mocks the calendar event fetch.
func (m *MockClient) GetEvent(ctx context.Context, userID, eventID string) (*api.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, userID, eventID)
	}
	return &api.Event{ID: eventID, Subject: "Test Meeting"}, nil
}

// ResolveMeetingID mocks the join URL to online meeting ID lookup.
func (m *MockClient) ResolveMeetingID(ctx context.Context, userID, joinURL string) (string, error) {
	if m.ResolveMeetingIDFunc != nil {
		return m.ResolveMeetingIDFunc(ctx, userID, joinURL)
	}
	return "test-meeting-id", nil
}

// GetUserObjectID mocks the email to object ID resolution.
func (m *MockClient) GetUserObjectID(ctx context.Context, email string) (string, error) {
	if m.GetUserObjectIDFunc != nil {
		return m.GetUserObjectIDFunc(ctx, email)
	}
	return "test-object-id", nil
}

// ListUsers mocks the directory listing.
func (m *MockClient) ListUsers(ctx context.Context) ([]api.DirectoryUser, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}

// UserCanHostMeetings mocks the license check.
func (m *MockClient) UserCanHostMeetings(ctx context.Context, userID string) (bool, error) {
	if m.UserCanHostMeetingsFunc != nil {
		return m.UserCanHostMeetingsFunc(ctx, userID)
	}
	return true, nil
}

// ListTranscripts mocks the meeting transcript listing.
func (m *MockClient) ListTranscripts(ctx context.Context, userID, meetingID string) ([]api.TranscriptEntry, error) {
	if m.ListTranscriptsFunc != nil {
		return m.ListTranscriptsFunc(ctx, userID, meetingID)
	}
	return nil, nil
}

// GetTranscriptContent mocks the transcript content download.
func (m *MockClient) GetTranscriptContent(ctx context.Context, contentURL string) (string, error) {
	if m.GetTranscriptContentFunc != nil {
		return m.GetTranscriptContentFunc(ctx, contentURL)
	}
	return "", nil
}

// CreateSubscription mocks the subscription creation call.
func (m *MockClient) CreateSubscription(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error) {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, request)
	}
	return &api.Subscription{ID: "test-subscription-id", Resource: request.Resource, ExpirationDateTime: request.ExpirationDateTime}, nil
}

// Ensure MockClient implements ClientAPI interface
var _ api.ClientAPI = (*MockClient)(nil)
