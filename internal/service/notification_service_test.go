// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api/mocks"
)

func eventNotification(userID, eventID string) models.EventNotification {
	return models.EventNotification{
		ChangeType: "created",
		Resource:   "users/" + userID + "/events/" + eventID,
		ResourceData: &models.ResourceData{
			ID: eventID,
		},
	}
}

func onlineEvent(eventID, joinURL string) *api.Event {
	return &api.Event{
		ID:      eventID,
		Subject: "Weekly Sync",
		Organizer: &api.Recipient{
			EmailAddress: api.EmailAddress{
				Address: "organizer@example.com",
				ID:      "organizer-object-id",
			},
		},
		OnlineMeetingURL: joinURL,
	}
}

func TestNewNotificationService(t *testing.T) {
	client := mocks.NewMockClient()
	meetingRepo := &domain.MockMeetingRepository{}
	messageBuilder := &domain.MockMessageBuilder{}

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	assert.NotNil(t, service)
	assert.Equal(t, client, service.Client)
	// Zero config is filled with the standard tunables.
	assert.NotZero(t, service.Config.MaxTranscriptRetries)
}

func TestNotificationService_ServiceReady(t *testing.T) {
	tests := []struct {
		name          string
		setupService  func() *NotificationService
		expectedReady bool
	}{
		{
			name: "ready with all dependencies",
			setupService: func() *NotificationService {
				return &NotificationService{
					Client:            mocks.NewMockClient(),
					MeetingRepository: &domain.MockMeetingRepository{},
					MessageBuilder:    &domain.MockMessageBuilder{},
				}
			},
			expectedReady: true,
		},
		{
			name: "not ready - missing client",
			setupService: func() *NotificationService {
				return &NotificationService{
					MeetingRepository: &domain.MockMeetingRepository{},
					MessageBuilder:    &domain.MockMessageBuilder{},
				}
			},
			expectedReady: false,
		},
		{
			name: "not ready - missing repository",
			setupService: func() *NotificationService {
				return &NotificationService{
					Client:         mocks.NewMockClient(),
					MessageBuilder: &domain.MockMessageBuilder{},
				}
			},
			expectedReady: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedReady, tt.setupService().ServiceReady())
		})
	}
}

func TestNotificationService_ProcessBatch_NotReady(t *testing.T) {
	service := &NotificationService{}

	err := service.ProcessBatch(context.Background(), &models.NotificationBatch{})

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestNotificationService_ProcessBatch_TokenFailureAborts(t *testing.T) {
	client := mocks.NewMockClient()
	client.AcquireTokenFunc = func(ctx context.Context) (*oauth2.Token, error) {
		return nil, domain.NewAuthError("invalid client credentials")
	}
	meetingRepo := &domain.MockMeetingRepository{}
	messageBuilder := &domain.MockMessageBuilder{}

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	batch := &models.NotificationBatch{
		Value: []models.EventNotification{eventNotification("user-1", "event-1")},
	}
	err := service.ProcessBatch(context.Background(), batch)

	assert.Error(t, err)
	assert.Equal(t, domain.ErrorTypeAuth, domain.GetErrorType(err))
	meetingRepo.AssertNotCalled(t, "UpsertMeeting", mock.Anything, mock.Anything)
}

func TestNotificationService_ProcessBatch_ResolvesAndUpserts(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetEventFunc = func(ctx context.Context, userID, eventID string) (*api.Event, error) {
		return onlineEvent(eventID, "https://teams.example.com/join/abc"), nil
	}
	client.ResolveMeetingIDFunc = func(ctx context.Context, userID, joinURL string) (string, error) {
		return "meeting-123", nil
	}

	meetingRepo := &domain.MockMeetingRepository{}
	meetingRepo.On("UpsertMeeting", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.MeetingID == "meeting-123" &&
			m.OrganizerEmail == "organizer@example.com" &&
			m.OrganizerObjectID == "organizer-object-id" &&
			m.Status.String() == "MEETING_ID_FETCHED" &&
			m.IsParent
	})).Return(nil)

	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendMeetingIngest", mock.Anything, mock.Anything).Return(nil)

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	batch := &models.NotificationBatch{
		Value: []models.EventNotification{eventNotification("user-1", "event-1")},
	}
	err := service.ProcessBatch(context.Background(), batch)

	assert.NoError(t, err)
	meetingRepo.AssertExpectations(t)
	messageBuilder.AssertExpectations(t)
}

func TestNotificationService_ProcessBatch_DeduplicatesWithinBatch(t *testing.T) {
	// Two notifications (created + updated) for the same event resolve to
	// the same meeting; it must be upserted once.
	client := mocks.NewMockClient()
	client.GetEventFunc = func(ctx context.Context, userID, eventID string) (*api.Event, error) {
		return onlineEvent(eventID, "https://teams.example.com/join/abc"), nil
	}
	client.ResolveMeetingIDFunc = func(ctx context.Context, userID, joinURL string) (string, error) {
		return "meeting-123", nil
	}

	meetingRepo := &domain.MockMeetingRepository{}
	meetingRepo.On("UpsertMeeting", mock.Anything, mock.Anything).Return(nil)
	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendMeetingIngest", mock.Anything, mock.Anything).Return(nil)

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	created := eventNotification("user-1", "event-1")
	updated := eventNotification("user-1", "event-1")
	updated.ChangeType = "updated"

	err := service.ProcessBatch(context.Background(), &models.NotificationBatch{
		Value: []models.EventNotification{created, updated},
	})

	assert.NoError(t, err)
	meetingRepo.AssertNumberOfCalls(t, "UpsertMeeting", 1)
	messageBuilder.AssertNumberOfCalls(t, "SendMeetingIngest", 1)
}

func TestNotificationService_ProcessBatch_SkipsNonOnlineEvents(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetEventFunc = func(ctx context.Context, userID, eventID string) (*api.Event, error) {
		event := onlineEvent(eventID, "")
		return event, nil
	}

	meetingRepo := &domain.MockMeetingRepository{}
	messageBuilder := &domain.MockMessageBuilder{}

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	err := service.ProcessBatch(context.Background(), &models.NotificationBatch{
		Value: []models.EventNotification{eventNotification("user-1", "event-1")},
	})

	assert.NoError(t, err)
	meetingRepo.AssertNotCalled(t, "UpsertMeeting", mock.Anything, mock.Anything)
}

func TestNotificationService_ProcessBatch_ItemFailureDoesNotAbortBatch(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetEventFunc = func(ctx context.Context, userID, eventID string) (*api.Event, error) {
		if eventID == "event-broken" {
			return nil, domain.NewUpstreamError("failed to fetch event")
		}
		return onlineEvent(eventID, "https://teams.example.com/join/"+eventID), nil
	}
	client.ResolveMeetingIDFunc = func(ctx context.Context, userID, joinURL string) (string, error) {
		return "meeting-for-" + joinURL, nil
	}

	meetingRepo := &domain.MockMeetingRepository{}
	meetingRepo.On("UpsertMeeting", mock.Anything, mock.Anything).Return(nil)
	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendMeetingIngest", mock.Anything, mock.Anything).Return(nil)

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	err := service.ProcessBatch(context.Background(), &models.NotificationBatch{
		Value: []models.EventNotification{
			eventNotification("user-1", "event-broken"),
			eventNotification("user-1", "event-ok"),
		},
	})

	assert.NoError(t, err)
	meetingRepo.AssertNumberOfCalls(t, "UpsertMeeting", 1)
}

func TestNotificationService_ProcessBatch_SeriesOccurrenceIsNotParent(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetEventFunc = func(ctx context.Context, userID, eventID string) (*api.Event, error) {
		event := onlineEvent(eventID, "https://teams.example.com/join/abc")
		event.SeriesMasterID = "series-master-1"
		return event, nil
	}
	client.ResolveMeetingIDFunc = func(ctx context.Context, userID, joinURL string) (string, error) {
		return "meeting-occurrence", nil
	}

	meetingRepo := &domain.MockMeetingRepository{}
	meetingRepo.On("UpsertMeeting", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return !m.IsParent && m.SeriesID == "series-master-1"
	})).Return(nil)
	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendMeetingIngest", mock.Anything, mock.Anything).Return(nil)

	service := NewNotificationService(client, meetingRepo, messageBuilder, ServiceConfig{})

	err := service.ProcessBatch(context.Background(), &models.NotificationBatch{
		Value: []models.EventNotification{eventNotification("user-1", "event-1")},
	})

	assert.NoError(t, err)
	meetingRepo.AssertExpectations(t)
}

func TestNotificationService_ResolveOrganizerObjectID(t *testing.T) {
	tests := []struct {
		name       string
		event      *api.Event
		lookupID   string
		lookupErr  error
		expectedID string
		expectUUID bool
	}{
		{
			name:       "embedded object id wins",
			event:      onlineEvent("event-1", "https://example.com/join"),
			expectedID: "organizer-object-id",
		},
		{
			name: "directory lookup by email",
			event: &api.Event{
				Organizer: &api.Recipient{
					EmailAddress: api.EmailAddress{Address: "organizer@example.com"},
				},
			},
			lookupID:   "looked-up-id",
			expectedID: "looked-up-id",
		},
		{
			name: "placeholder when lookup fails",
			event: &api.Event{
				Organizer: &api.Recipient{
					EmailAddress: api.EmailAddress{Address: "organizer@example.com"},
				},
			},
			lookupErr:  domain.NewNotFoundError("user not found"),
			expectUUID: true,
		},
		{
			name:       "placeholder when organizer is absent",
			event:      &api.Event{},
			expectUUID: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient()
			client.GetUserObjectIDFunc = func(ctx context.Context, email string) (string, error) {
				return tt.lookupID, tt.lookupErr
			}
			service := NewNotificationService(client, &domain.MockMeetingRepository{}, &domain.MockMessageBuilder{}, ServiceConfig{})

			id := service.resolveOrganizerObjectID(context.Background(), tt.event)

			if tt.expectUUID {
				_, err := uuid.Parse(id)
				assert.NoError(t, err, "placeholder must be a valid uuid")
			} else {
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}
