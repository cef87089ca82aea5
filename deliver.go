// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"context"
	"sync"
)

// deliver fans one drained batch out to every destination whose
// circuit admits an attempt. The batch is encoded once and compressed
// once per distinct compression tag; each destination then gets its
// own goroutine, its own timeout (inside the transport), and its own
// outcome. One destination failing, hanging, or being removed
// mid-flight never affects another's attempt.
//
// deliver returns an error only when the batch cannot be serialized
// at all — a programming-level defect, not a remote failure. Remote
// failures are absorbed into breaker state, health counters, the
// Observer, and the shipper's log.
func (s *Shipper) deliver(ctx context.Context, batch []Record) error {
	entries := s.registry.snapshot()
	if len(entries) == 0 {
		s.logger.Debug("no destinations registered, discarding batch",
			"records", len(batch),
		)
		return nil
	}

	set, err := newPayloadSet(batch, s.config.Encoding)
	if err != nil {
		return err
	}

	// Prepare every needed payload before consulting the breakers:
	// payloadSet is not concurrency-safe, and a compression failure
	// must not strand a half-open breaker's probe admission.
	for _, entry := range entries {
		if _, err := set.payload(entry.destination.Compression); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	for _, entry := range entries {
		if !entry.breaker.allow(s.clock.Now()) {
			// Open circuit: skipped entirely. Not an attempt, so no
			// health counters and no Observer call.
			s.logger.Debug("circuit open, skipping destination",
				"destination", entry.destination.Name,
				"records", len(batch),
			)
			continue
		}

		payload, _ := set.payload(entry.destination.Compression)
		wg.Add(1)
		go func(entry *destinationEntry) {
			defer wg.Done()
			s.attempt(ctx, entry, payload)
		}(entry)
	}
	wg.Wait()
	return nil
}

// attempt performs one delivery to one destination and records its
// outcome.
func (s *Shipper) attempt(ctx context.Context, entry *destinationEntry, payload *Payload) {
	start := s.clock.Now()
	err := s.transport.Send(ctx, entry.destination, payload)
	completed := s.clock.Now()
	latency := completed.Sub(start)

	if err != nil {
		entry.breaker.recordFailure(completed)
		entry.health.recordAttempt(false, latency, completed)
		s.logger.Warn("delivery failed",
			"destination", entry.destination.Name,
			"records", payload.Records,
			"error", err,
			"latency", latency,
			"consecutive_failures", entry.breaker.failureCount(),
		)
	} else {
		entry.breaker.recordSuccess()
		entry.health.recordAttempt(true, latency, completed)
	}

	if s.observer != nil {
		s.observer.DeliveryCompleted(DeliveryResult{
			Destination: entry.destination.Name,
			Records:     payload.Records,
			Err:         err,
			Latency:     latency,
			Time:        completed,
		})
	}
}

// TestConnections probes every registered destination concurrently
// and reports name → reachable. Probes are diagnostic only: they
// carry no records and touch neither circuit breakers nor health
// counters.
func (s *Shipper) TestConnections(ctx context.Context) map[string]bool {
	entries := s.registry.snapshot()

	results := make(map[string]bool, len(entries))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)
		go func(entry *destinationEntry) {
			defer wg.Done()
			err := s.transport.Probe(ctx, entry.destination)
			mu.Lock()
			results[entry.destination.Name] = err == nil
			mu.Unlock()
		}(entry)
	}
	wg.Wait()
	return results
}
