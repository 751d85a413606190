// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ListEligibleUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) BulkUpdateValidation(ctx context.Context, validatedAt, expiresAt time.Time) error {
	args := m.Called(ctx, validatedAt, expiresAt)
	return args.Error(0)
}

// MockMeetingRepository implements MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) UpsertMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) ListPendingMeetings(ctx context.Context) ([]*models.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) UpdateMeetingStatus(ctx context.Context, meetingID string, status models.MeetingStatus) error {
	args := m.Called(ctx, meetingID, status)
	return args.Error(0)
}

// MockTranscriptRepository implements TranscriptRepository for testing
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) TranscriptExists(ctx context.Context, transcriptURL string) (bool, error) {
	args := m.Called(ctx, transcriptURL)
	return args.Bool(0), args.Error(1)
}

func (m *MockTranscriptRepository) RecordTranscript(ctx context.Context, record *models.TranscriptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTranscriptRepository) SetNotesPath(ctx context.Context, transcriptURL, notesPath string) error {
	args := m.Called(ctx, transcriptURL, notesPath)
	return args.Error(0)
}

// MockContentStore implements ContentStore for testing
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	args := m.Called(ctx, path, data)
	return args.String(0), args.Error(1)
}

// MockNotesGenerator implements NotesGenerator for testing
type MockNotesGenerator struct {
	mock.Mock
}

func (m *MockNotesGenerator) Generate(ctx context.Context, transcript string) (string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.Error(1)
}

// MockMessageBuilder implements MessageBuilder for testing
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendMeetingIngest(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendTranscriptArchived(ctx context.Context, record *models.TranscriptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendSubscriptionRenewed(ctx context.Context, batch *models.RenewalBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}
