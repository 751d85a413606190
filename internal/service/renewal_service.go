// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/logging"
	"github.com/meetingharvest/transcript-service/pkg/concurrent"
)

// RenewalService keeps change notification subscriptions alive for every
// eligible user.
type RenewalService struct {
	Client         api.ClientAPI
	UserRepository domain.UserRepository
	MessageBuilder domain.MessageBuilder
	Config         ServiceConfig
}

// NewRenewalService creates a new RenewalService.
func NewRenewalService(
	client api.ClientAPI,
	userRepository domain.UserRepository,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *RenewalService {
	return &RenewalService{
		Client:         client,
		UserRepository: userRepository,
		MessageBuilder: messageBuilder,
		Config:         config.Defaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *RenewalService) ServiceReady() bool {
	return s.Client != nil &&
		s.UserRepository != nil &&
		s.MessageBuilder != nil
}

// Tick renews subscriptions for all eligible users: bounded fan-out, join,
// then exactly one consolidated validation-timestamp write for the whole
// batch. Per-user failures are logged and do not block siblings or the write.
func (s *RenewalService) Tick(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if _, err := s.Client.AcquireToken(ctx); err != nil {
		return err
	}

	users, err := s.UserRepository.ListEligibleUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		slog.InfoContext(ctx, "no eligible users to renew")
		return nil
	}

	validatedAt := time.Now().UTC()
	expiresAt := validatedAt.Add(s.Config.SubscriptionExpiry)

	functions := make([]func() error, len(users))
	for i, user := range users {
		functions[i] = func() error {
			request := api.NewEventSubscriptionRequest(user.ID, s.Config.NotificationURL, s.Config.ClientState, expiresAt)
			if _, err := s.Client.CreateSubscription(ctx, request); err != nil {
				slog.ErrorContext(ctx, "failed to renew subscription",
					"user_id", user.ID,
					logging.ErrKey, err,
				)
				return err
			}
			return nil
		}
	}

	pool := concurrent.NewWorkerPool(s.Config.RenewalWorkers)
	errs := pool.RunAll(ctx, functions...)

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}

	slog.InfoContext(ctx, "subscription renewal batch completed",
		"eligible_users", len(users),
		"failures", failures,
		"expires_at", expiresAt.Format(time.RFC3339),
	)

	// The stamp covers the batch, not individual outcomes; a user whose
	// renewal failed is retried on the next (daily) tick well before the
	// (70h) expiry window runs out.
	if err := s.UserRepository.BulkUpdateValidation(ctx, validatedAt, expiresAt); err != nil {
		return err
	}

	batch := &models.RenewalBatch{
		EligibleUsers: len(users),
		Failures:      failures,
		ValidatedAt:   validatedAt,
		ExpiresAt:     expiresAt,
	}
	if err := s.MessageBuilder.SendSubscriptionRenewed(ctx, batch); err != nil {
		slog.ErrorContext(ctx, "failed to publish renewal message", logging.ErrKey, err)
	}

	return nil
}
