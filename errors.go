// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import "errors"

// ErrShutdown is returned by Log, Flush, AddDestination, and
// RemoveDestination once Shutdown has been called. Operations fail
// fast rather than silently dropping data.
var ErrShutdown = errors.New("logship: shipper is shut down")

// ErrDuplicateDestination is returned by AddDestination when a
// destination with the same name is already registered. Duplicates
// are rejected, not replaced: replacing would silently discard the
// existing destination's circuit breaker and health state.
var ErrDuplicateDestination = errors.New("logship: duplicate destination name")

// ErrUnknownDestination is returned by RemoveDestination for a name
// that is not registered.
var ErrUnknownDestination = errors.New("logship: unknown destination")
