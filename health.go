// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"sync"
	"time"
)

// DestinationHealth is an immutable snapshot of one destination's
// delivery statistics.
type DestinationHealth struct {
	// TotalRequests counts completed delivery attempts. Attempts
	// skipped by an open circuit are not requests and do not count.
	TotalRequests uint64

	// SuccessfulRequests counts acknowledged deliveries.
	SuccessfulRequests uint64

	// FailedRequests counts delivery failures (network error,
	// timeout, or non-success status).
	FailedRequests uint64

	// AverageLatency is the running mean over all completed
	// attempts, successes and failures alike. A timed-out attempt
	// contributes the time it took to fail.
	AverageLatency time.Duration

	// LastSuccess and LastFailure are the times of the most recent
	// outcomes; zero if that outcome has never occurred.
	LastSuccess time.Time
	LastFailure time.Time

	// Circuit is the destination's circuit breaker state at snapshot
	// time.
	Circuit CircuitState

	// Healthy is true while the circuit is not open.
	Healthy bool
}

// healthState accumulates per-destination delivery statistics.
// Counters only increase; the mean latency is maintained as a running
// total so the aggregate view can weight destinations by request
// count.
type healthState struct {
	mu sync.Mutex

	total        uint64
	successful   uint64
	failed       uint64
	latencyTotal time.Duration
	lastSuccess  time.Time
	lastFailure  time.Time
}

// recordAttempt records one completed delivery attempt.
func (h *healthState) recordAttempt(success bool, latency time.Duration, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total++
	h.latencyTotal += latency
	if success {
		h.successful++
		h.lastSuccess = now
	} else {
		h.failed++
		h.lastFailure = now
	}
}

// snapshot returns the immutable health view, deriving Healthy from
// the supplied circuit state.
func (h *healthState) snapshot(circuit CircuitState) DestinationHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	var average time.Duration
	if h.total > 0 {
		average = h.latencyTotal / time.Duration(h.total)
	}

	return DestinationHealth{
		TotalRequests:      h.total,
		SuccessfulRequests: h.successful,
		FailedRequests:     h.failed,
		AverageLatency:     average,
		LastSuccess:        h.lastSuccess,
		LastFailure:        h.lastFailure,
		Circuit:            circuit,
		Healthy:            circuit != CircuitOpen,
	}
}

// totals returns the raw counters for aggregate statistics.
func (h *healthState) totals() (total, successful, failed uint64, latencyTotal time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total, h.successful, h.failed, h.latencyTotal
}

// Stats is the aggregate view across all destinations.
type Stats struct {
	// BufferSize is the number of records currently buffered.
	BufferSize int

	// Destinations is the number of registered destinations.
	Destinations int

	// HealthyDestinations and UnhealthyDestinations partition the
	// registered destinations by circuit state (unhealthy = open).
	HealthyDestinations   int
	UnhealthyDestinations int

	// OpenCircuits is the number of destinations whose breaker is
	// currently open.
	OpenCircuits int

	// TotalRequests, SuccessfulRequests, and FailedRequests sum the
	// per-destination counters.
	TotalRequests      uint64
	SuccessfulRequests uint64
	FailedRequests     uint64

	// AverageLatency is the mean over all completed attempts across
	// destinations — weighted by each destination's request count,
	// not a mean of per-destination means.
	AverageLatency time.Duration
}
