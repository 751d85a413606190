// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/meetingharvest/transcript-service/internal/domain"
	"github.com/meetingharvest/transcript-service/internal/domain/models"
)

// TranscriptRepository implements domain.TranscriptRepository over Postgres.
type TranscriptRepository struct {
	db *sql.DB
}

// NewTranscriptRepository creates a transcript repository over the shared pool.
func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

var _ domain.TranscriptRepository = (*TranscriptRepository)(nil)

// TranscriptExists reports whether a content URL has already been archived.
func (r *TranscriptRepository) TranscriptExists(ctx context.Context, transcriptURL string) (bool, error) {
	const query = `SELECT 1 FROM transcripts WHERE transcript_url = $1`

	var one int
	err := r.db.QueryRowContext(ctx, query, transcriptURL).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStoreError("failed to check transcript existence", err)
	}
	return true, nil
}

// RecordTranscript records an archived transcript keyed by its content URL.
// A conflicting insert is a no-op: the first writer wins and the URL stays
// archived exactly once.
func (r *TranscriptRepository) RecordTranscript(ctx context.Context, record *models.TranscriptRecord) error {
	const query = `
INSERT INTO transcripts (transcript_url, meeting_id, archive_path, notes_path)
VALUES ($1, $2, $3, NULLIF($4, ''))
ON CONFLICT (transcript_url) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		record.TranscriptURL,
		record.MeetingID,
		record.ArchivePath,
		record.NotesPath,
	)
	if err != nil {
		return domain.NewStoreError("failed to record transcript", err)
	}
	return nil
}

// SetNotesPath stamps the generated-notes path on an archived transcript.
func (r *TranscriptRepository) SetNotesPath(ctx context.Context, transcriptURL, notesPath string) error {
	const query = `
UPDATE transcripts
SET notes_path = $1
WHERE transcript_url = $2`

	result, err := r.db.ExecContext(ctx, query, notesPath, transcriptURL)
	if err != nil {
		return domain.NewStoreError("failed to set notes path", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("transcript not found: " + transcriptURL)
	}
	return nil
}
