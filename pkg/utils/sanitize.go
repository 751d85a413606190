// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package utils provides small helpers shared across the service.
package utils

import (
	"strings"
	"time"
)

// pathUnsafe are the characters stripped from archive path segments.
const pathUnsafe = `/\*?:"<>|`

// SanitizePathComponent makes a string safe to use as a single archive path
// segment: path-unsafe characters become underscores, surrounding whitespace
// is trimmed, and interior spaces become underscores.
func SanitizePathComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(pathUnsafe, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// ArchivePath builds the deterministic storage path for a meeting transcript:
// {organizer}/{subject}/{date}/{subject}_transcript.txt with every segment
// sanitized. Empty inputs fall back to Unknown* placeholders so the path is
// always well formed.
func ArchivePath(organizerEmail, subject string, meetingDate *time.Time) string {
	safeSubject := SanitizePathComponent(subject)
	if safeSubject == "" {
		safeSubject = "UnknownSubject"
	}
	safeOrganizer := SanitizePathComponent(organizerEmail)
	if safeOrganizer == "" {
		safeOrganizer = "UnknownOrganizer"
	}
	dateStr := "UnknownDate"
	if meetingDate != nil {
		dateStr = meetingDate.UTC().Format("2006-01-02")
	}
	return safeOrganizer + "/" + safeSubject + "/" + dateStr + "/" + safeSubject + "_transcript.txt"
}

// NotesPath derives the meeting-notes object path from a transcript archive
// path by swapping the file suffix.
func NotesPath(archivePath string) string {
	if strings.HasSuffix(archivePath, "_transcript.txt") {
		return strings.TrimSuffix(archivePath, "_transcript.txt") + "_notes.txt"
	}
	return archivePath + ".notes.txt"
}
