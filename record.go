// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import "time"

// Record is a single structured log record. Once accepted by
// [Shipper.Log] a record is immutable: the pipeline never modifies it,
// and callers must not either.
//
// Metadata values must be serializable by the configured payload
// encoding (JSON or CBOR). Nested maps and slices of basic types are
// fine; channels, funcs, and cyclic structures are not.
type Record struct {
	// Time is when the record was produced. Log stamps records whose
	// Time is zero with the current time.
	Time time.Time `json:"time"`

	// Level is the record's severity.
	Level Level `json:"level"`

	// Message is the log text.
	Message string `json:"message"`

	// Metadata carries optional structured fields.
	Metadata map[string]any `json:"metadata,omitempty"`
}
