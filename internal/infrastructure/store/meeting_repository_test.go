// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

func newMockRepo(t *testing.T) (*MeetingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewMeetingRepository(db), mock
}

func TestUpsertMeetingLeavesStatusAlone(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	meeting := &models.Meeting{
		MeetingID:         "meeting-1",
		OrganizerEmail:    "ana@example.com",
		OrganizerObjectID: "obj-ana",
		Subject:           "Weekly Sync",
		StartTime:         &start,
		JoinURL:           "https://teams.example.com/join/abc",
		Status:            models.StatusIDFetched(),
		IsParent:          true,
	}

	// The conflict clause must not touch the status column.
	mock.ExpectExec(`INSERT INTO meetings .+ ON CONFLICT \(meeting_id\) DO UPDATE SET\s+organizer_email`).
		WithArgs(
			meeting.MeetingID,
			meeting.OrganizerEmail,
			meeting.OrganizerObjectID,
			meeting.Subject,
			meeting.StartTime,
			nil,
			meeting.JoinURL,
			"",
			"MEETING_ID_FETCHED",
			true,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertMeeting(context.Background(), meeting); err != nil {
		t.Fatalf("UpsertMeeting: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestListPendingMeetings(t *testing.T) {
	repo, mock := newMockRepo(t)

	columns := []string{
		"meeting_id", "organizer_email", "organizer_object_id", "subject",
		"start_time", "end_time", "join_url", "series_id", "status",
		"transcript_status", "transcript_url", "archive_path", "is_parent",
		"notes", "last_checked_at",
	}
	lastChecked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow("meeting-1", "ana@example.com", "obj-ana", "Weekly Sync",
			nil, nil, nil, nil, "MEETING_ID_FETCHED",
			nil, nil, nil, true, nil, nil).
		AddRow("meeting-2", "bo@example.com", "obj-bo", "Planning",
			nil, nil, "https://teams.example.com/join/p", "series-1", "TRANSCRIPT_RUN_17",
			nil, nil, nil, true, nil, lastChecked)

	mock.ExpectQuery(`SELECT .+ FROM meetings\s+WHERE is_parent`).WillReturnRows(rows)

	meetings, err := repo.ListPendingMeetings(context.Background())
	if err != nil {
		t.Fatalf("ListPendingMeetings: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}

	if meetings[0].Status.Phase != models.PhaseIDFetched {
		t.Errorf("expected phase IDFetched, got %v", meetings[0].Status.Phase)
	}
	if meetings[1].Status.Phase != models.PhaseTranscriptRun || meetings[1].Status.Run != 17 {
		t.Errorf("expected run 17 status, got %v", meetings[1].Status)
	}
	if meetings[1].LastCheckedAt == nil || !meetings[1].LastCheckedAt.Equal(lastChecked) {
		t.Errorf("unexpected last checked at: %v", meetings[1].LastCheckedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestUpdateMeetingStatus(t *testing.T) {
	t.Run("updates status and poll time", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE meetings\s+SET status = \$1`).
			WithArgs("TRANSCRIPT_RUN_1", "meeting-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateMeetingStatus(context.Background(), "meeting-1", models.StatusTranscriptRun(1))
		if err != nil {
			t.Fatalf("UpdateMeetingStatus: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("ExpectationsWereMet: %v", err)
		}
	})

	t.Run("missing meeting is a not-found error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE meetings\s+SET status = \$1`).
			WithArgs("TRANSCRIPT_FAILED", "meeting-gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateMeetingStatus(context.Background(), "meeting-gone", models.StatusTranscriptFailed())
		if err == nil {
			t.Fatal("expected error for missing meeting")
		}
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			t.Errorf("expected not-found error type, got %v", domain.GetErrorType(err))
		}
	})
}
