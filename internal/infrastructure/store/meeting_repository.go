// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// MeetingRepository implements domain.MeetingRepository over Postgres.
type MeetingRepository struct {
	db *sql.DB
}

// NewMeetingRepository creates a meeting repository over the shared pool.
func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

var _ domain.MeetingRepository = (*MeetingRepository)(nil)

// UpsertMeeting inserts or updates a meeting keyed by its canonical meeting
// ID. On conflict the descriptive fields are refreshed but the status column
// is left alone: a duplicate or late notification must never rewind the
// lifecycle state machine.
func (r *MeetingRepository) UpsertMeeting(ctx context.Context, meeting *models.Meeting) error {
	const query = `
INSERT INTO meetings (
	meeting_id, organizer_email, organizer_object_id, subject,
	start_time, end_time, join_url, series_id, status, is_parent
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (meeting_id) DO UPDATE SET
	organizer_email     = EXCLUDED.organizer_email,
	organizer_object_id = EXCLUDED.organizer_object_id,
	subject             = EXCLUDED.subject,
	start_time          = EXCLUDED.start_time,
	end_time            = EXCLUDED.end_time,
	join_url            = EXCLUDED.join_url,
	series_id           = EXCLUDED.series_id`

	_, err := r.db.ExecContext(ctx, query,
		meeting.MeetingID,
		meeting.OrganizerEmail,
		meeting.OrganizerObjectID,
		meeting.Subject,
		meeting.StartTime,
		meeting.EndTime,
		meeting.JoinURL,
		meeting.SeriesID,
		meeting.Status.String(),
		meeting.IsParent,
	)
	if err != nil {
		return domain.NewStoreError("failed to upsert meeting", err)
	}
	return nil
}

// ListPendingMeetings returns parent meetings whose status is still in the
// retry family, ordered oldest-first so long-waiting meetings are polled
// before fresh ones.
func (r *MeetingRepository) ListPendingMeetings(ctx context.Context) ([]*models.Meeting, error) {
	const query = `
SELECT meeting_id, organizer_email, organizer_object_id, subject,
       start_time, end_time, join_url, series_id, status,
       transcript_status, transcript_url, archive_path, is_parent, notes,
       last_checked_at
FROM meetings
WHERE is_parent
  AND (status = 'MEETING_ID_FETCHED' OR status LIKE 'TRANSCRIPT\_RUN\_%')
ORDER BY last_checked_at NULLS FIRST, meeting_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStoreError("failed to list pending meetings", err)
	}
	defer func() { _ = rows.Close() }()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, domain.NewStoreError("failed to scan meeting row", err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("failed to read pending meetings", err)
	}

	return meetings, nil
}

// UpdateMeetingStatus persists a meeting's next lifecycle status and stamps
// the poll time.
func (r *MeetingRepository) UpdateMeetingStatus(ctx context.Context, meetingID string, status models.MeetingStatus) error {
	const query = `
UPDATE meetings
SET status = $1,
    last_checked_at = now()
WHERE meeting_id = $2`

	result, err := r.db.ExecContext(ctx, query, status.String(), meetingID)
	if err != nil {
		return domain.NewStoreError("failed to update meeting status", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("meeting not found: " + meetingID)
	}
	return nil
}

func scanMeeting(rows *sql.Rows) (*models.Meeting, error) {
	var m models.Meeting
	var rawStatus string
	var startTime, endTime, lastCheckedAt sql.NullTime
	var joinURL, seriesID, transcriptStatus, transcriptURL, archivePath, notes sql.NullString

	if err := rows.Scan(
		&m.MeetingID,
		&m.OrganizerEmail,
		&m.OrganizerObjectID,
		&m.Subject,
		&startTime,
		&endTime,
		&joinURL,
		&seriesID,
		&rawStatus,
		&transcriptStatus,
		&transcriptURL,
		&archivePath,
		&m.IsParent,
		&notes,
		&lastCheckedAt,
	); err != nil {
		return nil, err
	}

	m.Status = models.ParseMeetingStatus(rawStatus)
	if startTime.Valid {
		m.StartTime = &startTime.Time
	}
	if endTime.Valid {
		m.EndTime = &endTime.Time
	}
	if lastCheckedAt.Valid {
		m.LastCheckedAt = &lastCheckedAt.Time
	}
	m.JoinURL = joinURL.String
	m.SeriesID = seriesID.String
	m.TranscriptStatus = transcriptStatus.String
	m.TranscriptURL = transcriptURL.String
	m.ArchivePath = archivePath.String
	m.Notes = notes.String

	return &m, nil
}
