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
	"github.com/meetingharvest/transcript-service/pkg/utils"
)

// TranscriptService drives the bounded transcript polling loop over pending
// meetings.
type TranscriptService struct {
	Client               api.ClientAPI
	MeetingRepository    domain.MeetingRepository
	TranscriptRepository domain.TranscriptRepository
	ContentStore         domain.ContentStore
	NotesGenerator       domain.NotesGenerator
	MessageBuilder       domain.MessageBuilder
	Config               ServiceConfig
}

// NewTranscriptService creates a new TranscriptService. The notes generator
// is optional; when nil, archival proceeds without notes.
func NewTranscriptService(
	client api.ClientAPI,
	meetingRepository domain.MeetingRepository,
	transcriptRepository domain.TranscriptRepository,
	contentStore domain.ContentStore,
	notesGenerator domain.NotesGenerator,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *TranscriptService {
	return &TranscriptService{
		Client:               client,
		MeetingRepository:    meetingRepository,
		TranscriptRepository: transcriptRepository,
		ContentStore:         contentStore,
		NotesGenerator:       notesGenerator,
		MessageBuilder:       messageBuilder,
		Config:               config.Defaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TranscriptService) ServiceReady() bool {
	return s.Client != nil &&
		s.MeetingRepository != nil &&
		s.TranscriptRepository != nil &&
		s.ContentStore != nil &&
		s.MessageBuilder != nil
}

// Tick runs one polling pass over all pending meetings. Meetings are
// processed sequentially with a fixed delay between them to rate-limit the
// upstream API. Failures on one meeting never affect the others; only a
// failed token acquisition aborts the pass.
func (s *TranscriptService) Tick(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if _, err := s.Client.AcquireToken(ctx); err != nil {
		return err
	}

	meetings, err := s.MeetingRepository.ListPendingMeetings(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "polling pending meetings", "count", len(meetings))

	for i, meeting := range meetings {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.Config.InterMeetingDelay):
			}
		}

		meetingCtx := logging.AppendCtx(ctx, slog.String("meeting_id", meeting.MeetingID))
		s.pollMeeting(meetingCtx, meeting)
	}

	return nil
}

// pollMeeting archives any new transcripts for one meeting and advances its
// status. The run counter advances whether or not a transcript appeared:
// archival outcome and the retry budget are deliberately independent.
func (s *TranscriptService) pollMeeting(ctx context.Context, meeting *models.Meeting) {
	entries, err := s.Client.ListTranscripts(ctx, meeting.OrganizerObjectID, meeting.MeetingID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list transcripts", logging.ErrKey, err)
	}

	for i := range entries {
		if err := s.archiveTranscript(ctx, meeting, &entries[i]); err != nil {
			slog.ErrorContext(ctx, "failed to archive transcript",
				"transcript_id", entries[i].ID,
				logging.ErrKey, err,
			)
		}
	}

	next := meeting.Status.Next(s.Config.MaxTranscriptRetries)
	if err := s.MeetingRepository.UpdateMeetingStatus(ctx, meeting.MeetingID, next); err != nil {
		// Not advanced this tick; the next tick retries the same run.
		slog.ErrorContext(ctx, "failed to advance meeting status", logging.ErrKey, err)
		return
	}

	if next.Terminal() {
		slog.WarnContext(ctx, "meeting exhausted its transcript retry budget",
			"status", next.String(),
		)
	}
}

// archiveTranscript downloads and stores one transcript entry unless its
// content URL was already archived.
func (s *TranscriptService) archiveTranscript(ctx context.Context, meeting *models.Meeting, entry *api.TranscriptEntry) error {
	contentURL := entry.TranscriptContentURL
	if contentURL == "" {
		return domain.NewValidationError("transcript entry has no content URL")
	}

	exists, err := s.TranscriptRepository.TranscriptExists(ctx, contentURL)
	if err != nil {
		return err
	}
	if exists {
		slog.DebugContext(ctx, "transcript already archived", "transcript_id", entry.ID)
		return nil
	}

	content, err := s.Client.GetTranscriptContent(ctx, contentURL)
	if err != nil {
		return err
	}

	archivePath := utils.ArchivePath(meeting.OrganizerEmail, meeting.Subject, meeting.StartTime)
	storedPath, err := s.ContentStore.Put(ctx, archivePath, []byte(content))
	if err != nil {
		return err
	}

	record := &models.TranscriptRecord{
		TranscriptURL: contentURL,
		MeetingID:     meeting.MeetingID,
		ArchivePath:   storedPath,
	}
	if err := s.TranscriptRepository.RecordTranscript(ctx, record); err != nil {
		return err
	}

	slog.InfoContext(ctx, "transcript archived",
		"transcript_id", entry.ID,
		"archive_path", storedPath,
	)

	if err := s.MessageBuilder.SendTranscriptArchived(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to publish transcript archived message", logging.ErrKey, err)
	}

	s.generateNotes(ctx, record, content)

	return nil
}

// generateNotes produces meeting notes for an archived transcript. Notes are
// best-effort: any failure is logged and the archival stands.
func (s *TranscriptService) generateNotes(ctx context.Context, record *models.TranscriptRecord, transcript string) {
	if s.NotesGenerator == nil {
		return
	}

	notes, err := s.NotesGenerator.Generate(ctx, transcript)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate meeting notes", logging.ErrKey, err)
		return
	}

	notesPath := utils.NotesPath(record.ArchivePath)
	if _, err := s.ContentStore.Put(ctx, notesPath, []byte(notes)); err != nil {
		slog.ErrorContext(ctx, "failed to store meeting notes", logging.ErrKey, err)
		return
	}

	if err := s.TranscriptRepository.SetNotesPath(ctx, record.TranscriptURL, notesPath); err != nil {
		slog.ErrorContext(ctx, "failed to stamp notes path", logging.ErrKey, err)
		return
	}

	record.NotesPath = notesPath
	slog.InfoContext(ctx, "meeting notes generated", "notes_path", notesPath)
}
