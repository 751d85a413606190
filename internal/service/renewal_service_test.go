// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api/mocks"
)

func eligibleUsers(n int) []*models.User {
	users := make([]*models.User, n)
	for i := range users {
		users[i] = &models.User{
			ID:              "user-" + string(rune('a'+i)),
			Email:           string(rune('a'+i)) + "@example.com",
			CanHostMeetings: true,
		}
	}
	return users
}

func TestRenewalService_ServiceReady(t *testing.T) {
	service := NewRenewalService(mocks.NewMockClient(), &domain.MockUserRepository{}, &domain.MockMessageBuilder{}, ServiceConfig{})
	assert.True(t, service.ServiceReady())

	service.UserRepository = nil
	assert.False(t, service.ServiceReady())
}

func TestRenewalService_Tick_TokenFailureAborts(t *testing.T) {
	client := mocks.NewMockClient()
	client.AcquireTokenFunc = func(ctx context.Context) (*oauth2.Token, error) {
		return nil, domain.NewAuthError("invalid client credentials")
	}
	userRepo := &domain.MockUserRepository{}

	service := NewRenewalService(client, userRepo, &domain.MockMessageBuilder{}, ServiceConfig{})
	err := service.Tick(context.Background())

	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "ListEligibleUsers", mock.Anything)
}

func TestRenewalService_Tick_NoEligibleUsers(t *testing.T) {
	userRepo := &domain.MockUserRepository{}
	userRepo.On("ListEligibleUsers", mock.Anything).Return([]*models.User{}, nil)
	messageBuilder := &domain.MockMessageBuilder{}

	service := NewRenewalService(mocks.NewMockClient(), userRepo, messageBuilder, ServiceConfig{})
	err := service.Tick(context.Background())

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "BulkUpdateValidation", mock.Anything, mock.Anything, mock.Anything)
	messageBuilder.AssertNotCalled(t, "SendSubscriptionRenewed", mock.Anything, mock.Anything)
}

func TestRenewalService_Tick_RenewsAllUsersWithOneValidationWrite(t *testing.T) {
	var renewed atomic.Int32
	client := mocks.NewMockClient()
	client.CreateSubscriptionFunc = func(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error) {
		renewed.Add(1)
		return &api.Subscription{ID: "sub"}, nil
	}

	userRepo := &domain.MockUserRepository{}
	userRepo.On("ListEligibleUsers", mock.Anything).Return(eligibleUsers(5), nil)
	userRepo.On("BulkUpdateValidation", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(nil)

	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendSubscriptionRenewed", mock.Anything, mock.MatchedBy(func(b *models.RenewalBatch) bool {
		return b.EligibleUsers == 5 && b.Failures == 0
	})).Return(nil)

	service := NewRenewalService(client, userRepo, messageBuilder, ServiceConfig{})
	err := service.Tick(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int32(5), renewed.Load())
	userRepo.AssertNumberOfCalls(t, "BulkUpdateValidation", 1)
	messageBuilder.AssertExpectations(t)
}

func TestRenewalService_Tick_PartialFailureStillStampsBatch(t *testing.T) {
	client := mocks.NewMockClient()
	client.CreateSubscriptionFunc = func(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error) {
		if request.Resource == "/users/user-b/events" {
			return nil, domain.NewUpstreamError("graph returned 503")
		}
		return &api.Subscription{ID: "sub"}, nil
	}

	userRepo := &domain.MockUserRepository{}
	userRepo.On("ListEligibleUsers", mock.Anything).Return(eligibleUsers(3), nil)
	userRepo.On("BulkUpdateValidation", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendSubscriptionRenewed", mock.Anything, mock.MatchedBy(func(b *models.RenewalBatch) bool {
		return b.EligibleUsers == 3 && b.Failures == 1
	})).Return(nil)

	service := NewRenewalService(client, userRepo, messageBuilder, ServiceConfig{})
	err := service.Tick(context.Background())

	assert.NoError(t, err)
	userRepo.AssertNumberOfCalls(t, "BulkUpdateValidation", 1)
	messageBuilder.AssertExpectations(t)
}

func TestRenewalService_Tick_BoundedConcurrency(t *testing.T) {
	const workers = 2

	var mu sync.Mutex
	inFlight, peak := 0, 0

	client := mocks.NewMockClient()
	client.CreateSubscriptionFunc = func(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return &api.Subscription{ID: "sub"}, nil
	}

	userRepo := &domain.MockUserRepository{}
	userRepo.On("ListEligibleUsers", mock.Anything).Return(eligibleUsers(8), nil)
	userRepo.On("BulkUpdateValidation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendSubscriptionRenewed", mock.Anything, mock.Anything).Return(nil)

	service := NewRenewalService(client, userRepo, messageBuilder, ServiceConfig{RenewalWorkers: workers})
	err := service.Tick(context.Background())

	assert.NoError(t, err)
	assert.LessOrEqual(t, peak, workers)
}

func TestRenewalService_Tick_SubscriptionRequestShape(t *testing.T) {
	var captured *api.SubscriptionRequest
	var mu sync.Mutex

	client := mocks.NewMockClient()
	client.CreateSubscriptionFunc = func(ctx context.Context, request *api.SubscriptionRequest) (*api.Subscription, error) {
		mu.Lock()
		captured = request
		mu.Unlock()
		return &api.Subscription{ID: "sub"}, nil
	}

	userRepo := &domain.MockUserRepository{}
	userRepo.On("ListEligibleUsers", mock.Anything).Return(eligibleUsers(1), nil)
	userRepo.On("BulkUpdateValidation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	messageBuilder := &domain.MockMessageBuilder{}
	messageBuilder.On("SendSubscriptionRenewed", mock.Anything, mock.Anything).Return(nil)

	service := NewRenewalService(client, userRepo, messageBuilder, ServiceConfig{
		NotificationURL: "https://hooks.example.com/webhooks/events",
		ClientState:     "shared-secret",
	})
	err := service.Tick(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, captured)
	assert.Equal(t, "/users/user-a/events", captured.Resource)
	assert.Equal(t, "https://hooks.example.com/webhooks/events", captured.NotificationURL)
	assert.Equal(t, "shared-secret", captured.ClientState)
	assert.Equal(t, api.SubscriptionChangeTypes, captured.ChangeType)

	expires, parseErr := time.Parse("2006-01-02T15:04:05Z", captured.ExpirationDateTime)
	assert.NoError(t, parseErr)
	// Expiry must sit the configured lifetime out from now, give or take
	// test scheduling slack.
	assert.WithinDuration(t, time.Now().UTC().Add(service.Config.SubscriptionExpiry), expires, time.Minute)
}
