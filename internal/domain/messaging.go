// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// MessageBuilder publishes lifecycle events for downstream consumers after
// registry writes. Publish failures are logged by implementations and must
// never fail the operation that triggered them.
type MessageBuilder interface {
	// SendMeetingIngest announces that a meeting was resolved and upserted.
	SendMeetingIngest(ctx context.Context, meeting *models.Meeting) error

	// SendTranscriptArchived announces that a transcript was archived.
	SendTranscriptArchived(ctx context.Context, record *models.TranscriptRecord) error

	// SendSubscriptionRenewed announces the outcome of a renewal batch.
	SendSubscriptionRenewed(ctx context.Context, batch *models.RenewalBatch) error
}
