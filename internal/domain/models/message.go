// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package models

// LifecycleMessage is the envelope for lifecycle events published to NATS.
// Tags carry searchable identifiers so consumers can filter without decoding
// the payload.
type LifecycleMessage struct {
	Data any      `json:"data"`
	Tags []string `json:"tags,omitempty"`
}
