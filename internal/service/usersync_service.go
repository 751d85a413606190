// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/logging"
)

// UserSyncService mirrors the organization directory into the user registry,
// marking which users are licensed to host meetings.
type UserSyncService struct {
	Client         api.ClientAPI
	UserRepository domain.UserRepository
	Config         ServiceConfig
}

// NewUserSyncService creates a new UserSyncService.
func NewUserSyncService(
	client api.ClientAPI,
	userRepository domain.UserRepository,
	config ServiceConfig,
) *UserSyncService {
	return &UserSyncService{
		Client:         client,
		UserRepository: userRepository,
		Config:         config.Defaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *UserSyncService) ServiceReady() bool {
	return s.Client != nil && s.UserRepository != nil
}

// Tick walks the full directory and upserts each user with their current
// hosting eligibility. Per-user failures are isolated.
func (s *UserSyncService) Tick(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if _, err := s.Client.AcquireToken(ctx); err != nil {
		return err
	}

	directoryUsers, err := s.Client.ListUsers(ctx)
	if err != nil {
		return err
	}

	synced, skipped := 0, 0
	for i := range directoryUsers {
		user := &directoryUsers[i]
		// Addresses are stored normalized lower-case.
		email := strings.ToLower(user.EmailAddress())
		if user.ID == "" || email == "" || !s.inDomain(email) {
			skipped++
			continue
		}

		canHost, err := s.Client.UserCanHostMeetings(ctx, user.ID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to check hosting license",
				"user_id", user.ID,
				logging.ErrKey, err,
			)
			continue
		}

		record := &models.User{
			ID:              user.ID,
			Email:           email,
			CanHostMeetings: canHost,
		}
		if err := s.UserRepository.UpsertUser(ctx, record); err != nil {
			slog.ErrorContext(ctx, "failed to upsert user",
				"user_id", user.ID,
				logging.ErrKey, err,
			)
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "directory sync completed",
		"directory_users", len(directoryUsers),
		"synced", synced,
		"skipped", skipped,
	)

	return nil
}

// inDomain reports whether the address belongs to the configured
// organization domain. An empty configuration admits every address.
func (s *UserSyncService) inDomain(email string) bool {
	if s.Config.EmailDomain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(s.Config.EmailDomain))
}
