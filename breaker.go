// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState is the delivery-eligibility state of one destination.
type CircuitState uint8

const (
	// CircuitClosed: deliveries are attempted normally.
	CircuitClosed CircuitState = 0

	// CircuitOpen: deliveries are skipped entirely — not attempted,
	// not counted.
	CircuitOpen CircuitState = 1

	// CircuitHalfOpen: one probe delivery is allowed to test whether
	// the destination has recovered.
	CircuitHalfOpen CircuitState = 2
)

// String returns the state name.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// breaker is the per-destination circuit breaker. It is a pure state
// machine driven only by allow, recordSuccess, and recordFailure with
// caller-supplied timestamps, so it is unit-testable without any I/O.
//
// Transitions: closed → open when consecutive failures reach the
// threshold; open → half-open once the timeout has elapsed since
// openedAt (allow admits a single probe); half-open → closed on
// probe success, half-open → open (openedAt reset) on probe failure.
//
// A disabled breaker reports closed and admits everything.
type breaker struct {
	mu sync.Mutex

	disabled  bool
	threshold int
	timeout   time.Duration

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time

	// probeInFlight guards the half-open state: exactly one attempt
	// is admitted until its outcome is recorded.
	probeInFlight bool
}

func newBreaker(threshold int, timeout time.Duration, disabled bool) *breaker {
	return &breaker{
		disabled:  disabled,
		threshold: threshold,
		timeout:   timeout,
	}
}

// allow reports whether a delivery attempt may proceed at the given
// time. An open breaker whose timeout has elapsed transitions to
// half-open and admits the call as the recovery probe.
func (b *breaker) allow(now time.Time) bool {
	if b.disabled {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if now.Sub(b.openedAt) < b.timeout {
			return false
		}
		b.state = CircuitHalfOpen
		b.probeInFlight = true
		return true

	case CircuitHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true

	default:
		return false
	}
}

// recordSuccess resets the failure count and fully closes the
// breaker, whatever state it was in.
func (b *breaker) recordSuccess() {
	if b.disabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = CircuitClosed
	b.consecutiveFailures = 0
	b.probeInFlight = false
	b.openedAt = time.Time{}
}

// recordFailure counts a delivery failure at the given time, opening
// the breaker when the threshold is reached or when a half-open probe
// fails.
func (b *breaker) recordFailure(now time.Time) {
	if b.disabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++

	switch b.state {
	case CircuitHalfOpen:
		b.state = CircuitOpen
		b.openedAt = now
		b.probeInFlight = false

	case CircuitClosed:
		if b.consecutiveFailures >= b.threshold {
			b.state = CircuitOpen
			b.openedAt = now
		}
	}
}

// currentState returns the stored state. Transitions happen only in
// allow and record calls: an open breaker past its timeout still
// reads as open until the next delivery attempt probes it.
func (b *breaker) currentState() CircuitState {
	if b.disabled {
		return CircuitClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// failureCount returns the consecutive failure count.
func (b *breaker) failureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}
