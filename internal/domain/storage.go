// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package domain

import "context"

// ContentStore persists transcript and notes content under a path.
// Write-once-per-path semantics are guaranteed by the registry's transcript
// existence check, not by the store itself.
type ContentStore interface {
	// Put writes data under the given path and returns the stored path.
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// NotesGenerator turns raw transcript text into structured meeting notes.
// It is a pure function of the transcript with no bearing on the lifecycle
// state machine.
type NotesGenerator interface {
	Generate(ctx context.Context, transcript string) (string, error)
}
