// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package messaging publishes lifecycle events to NATS for downstream
// consumers (search indexing, reporting, chat notifications).
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
	"github.com/meetingharvest/transcript-service/internal/logging"
	"github.com/meetingharvest/transcript-service/pkg/constants"
)

// INatsConn is the NATS connection interface needed by the MessageBuilder.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds lifecycle messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

var _ domain.MessageBuilder = (*MessageBuilder)(nil)

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// sendJSONMessage marshals the payload and publishes it with tags attached.
func (m *MessageBuilder) sendJSONMessage(ctx context.Context, subject string, payload any, tags []string) error {
	message := models.LifecycleMessage{
		Data: payload,
		Tags: tags,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed lifecycle message",
		"subject", subject,
		"tags_count", len(tags),
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendMeetingIngest announces that a meeting was resolved and upserted.
func (m *MessageBuilder) SendMeetingIngest(ctx context.Context, meeting *models.Meeting) error {
	return m.sendJSONMessage(ctx, constants.MeetingIngestSubject, meeting, meeting.Tags())
}

// SendTranscriptArchived announces that a transcript was archived.
func (m *MessageBuilder) SendTranscriptArchived(ctx context.Context, record *models.TranscriptRecord) error {
	tags := []string{record.MeetingID, "archive_path:" + record.ArchivePath}
	return m.sendJSONMessage(ctx, constants.TranscriptArchivedSubject, record, tags)
}

// SendSubscriptionRenewed announces the outcome of a renewal batch.
func (m *MessageBuilder) SendSubscriptionRenewed(ctx context.Context, batch *models.RenewalBatch) error {
	return m.sendJSONMessage(ctx, constants.SubscriptionRenewedSubject, batch, nil)
}
