// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/infrastructure/graph/api"
	"github.com/meetingharvest/transcript-service/internal/logging"
)

// NotificationService resolves change notifications into canonical meeting
// rows.
type NotificationService struct {
	Client            api.ClientAPI
	MeetingRepository domain.MeetingRepository
	MessageBuilder    domain.MessageBuilder
	Config            ServiceConfig
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	client api.ClientAPI,
	meetingRepository domain.MeetingRepository,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *NotificationService {
	return &NotificationService{
		Client:            client,
		MeetingRepository: meetingRepository,
		MessageBuilder:    messageBuilder,
		Config:            config.Defaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *NotificationService) ServiceReady() bool {
	return s.Client != nil &&
		s.MeetingRepository != nil &&
		s.MessageBuilder != nil
}

// ProcessBatch resolves every notification in a webhook batch. Item-level
// failures are logged and skipped; only a failed token acquisition aborts the
// batch, since without a credential no item can succeed.
func (s *NotificationService) ProcessBatch(ctx context.Context, batch *models.NotificationBatch) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if _, err := s.Client.AcquireToken(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to acquire token for notification batch", logging.ErrKey, err)
		return err
	}

	// Dedup is per batch: the same meeting referenced by several
	// notifications (created + updated) is resolved once.
	seen := make(map[string]struct{})

	for i := range batch.Value {
		notification := &batch.Value[i]
		itemCtx := logging.AppendCtx(ctx, slog.String("event_id", notification.EventID()))
		if err := s.processNotification(itemCtx, notification, seen); err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				// Not an online meeting (yet) or already deleted; nothing to track.
				slog.DebugContext(itemCtx, "skipping notification", logging.ErrKey, err)
				continue
			}
			slog.ErrorContext(itemCtx, "failed to process notification", logging.ErrKey, err)
		}
	}

	return nil
}

// processNotification resolves one notification to a canonical meeting and
// upserts it.
func (s *NotificationService) processNotification(ctx context.Context, notification *models.EventNotification, seen map[string]struct{}) error {
	userID := notification.UserID()
	eventID := notification.EventID()
	if userID == "" || eventID == "" {
		return domain.NewValidationError("notification missing user or event identifier")
	}

	event, err := s.Client.GetEvent(ctx, userID, eventID)
	if err != nil {
		return err
	}

	joinURL := event.JoinReference()
	if joinURL == "" {
		return domain.NewNotFoundError("event has no online meeting join URL")
	}

	meetingID, err := s.Client.ResolveMeetingID(ctx, userID, joinURL)
	if err != nil {
		return err
	}

	if _, dup := seen[meetingID]; dup {
		slog.DebugContext(ctx, "meeting already resolved in this batch", "meeting_id", meetingID)
		return nil
	}
	seen[meetingID] = struct{}{}

	meeting := &models.Meeting{
		MeetingID:         meetingID,
		OrganizerEmail:    event.OrganizerEmail(),
		OrganizerObjectID: s.resolveOrganizerObjectID(ctx, event),
		Subject:           event.Subject,
		StartTime:         event.StartTime(),
		EndTime:           event.EndTime(),
		JoinURL:           joinURL,
		SeriesID:          event.SeriesMasterID,
		Status:            models.StatusIDFetched(),
		// Occurrences of a series share the master's transcript stream; only
		// the standalone or master meeting is polled.
		IsParent: event.SeriesMasterID == "",
	}

	if err := s.MeetingRepository.UpsertMeeting(ctx, meeting); err != nil {
		return err
	}

	slog.InfoContext(ctx, "meeting resolved and upserted",
		"meeting_id", meetingID,
		"organizer_email", meeting.OrganizerEmail,
		"is_parent", meeting.IsParent,
	)

	if err := s.MessageBuilder.SendMeetingIngest(ctx, meeting); err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting ingest message", logging.ErrKey, err)
	}

	return nil
}

// resolveOrganizerObjectID finds the directory object id for the event's
// organizer: the event's embedded id first, then a directory lookup by email,
// then a generated placeholder so the meeting is still tracked rather than
// dropped.
func (s *NotificationService) resolveOrganizerObjectID(ctx context.Context, event *api.Event) string {
	if id := event.OrganizerObjectID(); id != "" {
		return id
	}

	email := event.OrganizerEmail()
	if email != "" {
		id, err := s.Client.GetUserObjectID(ctx, email)
		if err == nil {
			return id
		}
		slog.WarnContext(ctx, "failed to resolve organizer by email",
			"organizer_email", email,
			logging.ErrKey, err,
		)
	}

	// Last resort: keep tracking the meeting under a placeholder id instead
	// of dropping it.
	return uuid.New().String()
}
