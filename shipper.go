// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/logship/lib/clock"
)

// Shipper lifecycle states.
const (
	stateRunning int32 = iota
	stateShuttingDown
	stateStopped
)

// flushRequest asks the run loop to perform one flush and reports its
// outcome on reply.
type flushRequest struct {
	ctx   context.Context
	reply chan error
}

// Shipper is the delivery pipeline. Create one with New, feed it with
// Log, and stop it with Shutdown. All methods are safe for concurrent
// use.
type Shipper struct {
	config    Config
	buffer    *buffer
	registry  *registry
	transport Transport
	observer  Observer
	clock     clock.Clock
	logger    *slog.Logger

	flushRequests chan flushRequest
	quit          chan context.Context
	done          chan struct{}

	state        atomic.Int32
	shutdownOnce sync.Once
}

// New creates a Shipper, registers the configured destinations, and
// starts the flush loop. The config is treated as immutable from here
// on.
func New(config Config) (*Shipper, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	s := &Shipper{
		config:    config,
		buffer:    newBuffer(config.BatchSize),
		transport: config.Transport,
		observer:  config.Observer,
		clock:     config.Clock,
		logger:    config.Logger,

		flushRequests: make(chan flushRequest),
		quit:          make(chan context.Context, 1),
		done:          make(chan struct{}),
	}
	s.registry = newRegistry(func() *breaker {
		return newBreaker(config.CircuitBreakerThreshold, config.CircuitBreakerTimeout, config.DisableCircuitBreaker)
	})

	for _, destination := range config.Destinations {
		if err := s.registry.add(destination); err != nil {
			return nil, err
		}
	}

	go s.run()
	return s, nil
}

// run is the flush loop: the single goroutine that performs every
// flush, so concurrent flush triggers (timer tick, size threshold,
// explicit Flush, shutdown) serialize and never overlap.
func (s *Shipper) run() {
	defer close(s.done)

	ticker := s.clock.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushOnce(context.Background())

		case <-s.buffer.notify:
			// Coalesced threshold signal; re-check the live size
			// since an earlier flush may already have drained it.
			if s.buffer.size() >= s.config.BatchSize {
				s.flushOnce(context.Background())
			}

		case request := <-s.flushRequests:
			request.reply <- s.flushOnce(request.ctx)

		case shutdownCtx := <-s.quit:
			s.finalFlush(shutdownCtx)
			s.state.Store(stateStopped)
			s.logger.Info("shipper stopped")
			return
		}
	}
}

// flushOnce drains the buffer and delivers the resulting batch. An
// empty buffer is a no-op. The returned error is non-nil only for a
// serialization defect, never for a remote delivery failure.
func (s *Shipper) flushOnce(ctx context.Context) error {
	batch := s.buffer.drain()
	if len(batch) == 0 {
		return nil
	}
	if err := s.deliver(ctx, batch); err != nil {
		s.logger.Error("batch flush failed",
			"error", err,
			"records", len(batch),
		)
		return fmt.Errorf("logship: flush: %w", err)
	}
	return nil
}

// finalFlush performs the shutdown drain, bounded by the caller's
// context or, when that context has no deadline, by ShutdownGrace. A
// timed-out final delivery is reported through the usual channels and
// shutdown proceeds regardless.
func (s *Shipper) finalFlush(ctx context.Context) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownGrace)
		defer cancel()
	}
	if err := s.flushOnce(ctx); err != nil {
		s.logger.Warn("final flush failed", "error", err)
	}
}

// Log enqueues a record for delivery. It applies the minimum-severity
// filter synchronously and returns immediately — it never blocks on
// network I/O and never fails for a healthy, running pipeline. After
// Shutdown it returns ErrShutdown.
func (s *Shipper) Log(record Record) error {
	if s.state.Load() != stateRunning {
		return ErrShutdown
	}
	if !record.Level.valid() {
		return fmt.Errorf("logship: invalid record level %d", int8(record.Level))
	}
	if record.Level < s.config.MinLevel {
		return nil
	}
	if record.Time.IsZero() {
		record.Time = s.clock.Now()
	}
	s.buffer.add(record)
	return nil
}

// Flush triggers a flush and waits until that flush settles: the
// buffer drained and every destination's attempt completed (each
// bounded by its own timeout). Concurrent Flush calls and timer ticks
// coalesce — a flush already in progress finishes first, and a Flush
// that then observes an empty buffer is a no-op.
func (s *Shipper) Flush(ctx context.Context) error {
	if s.state.Load() != stateRunning {
		return ErrShutdown
	}

	request := flushRequest{ctx: ctx, reply: make(chan error, 1)}
	select {
	case s.flushRequests <- request:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrShutdown
	}

	// The run loop replies exactly once per accepted request.
	select {
	case err := <-request.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the flush timer, performs one final flush of any
// buffered records within the grace period, waits for the flush loop
// to exit, and transitions to stopped. A second call is a no-op that
// returns nil once the first shutdown has completed. Shutdown never
// fails because a final delivery timed out; such failures surface via
// the Observer and the log.
func (s *Shipper) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.state.Store(stateShuttingDown)
		s.logger.Info("shipper shutting down", "buffered", s.buffer.size())
		s.quit <- ctx
	})

	select {
	case <-s.done:
		return nil
	default:
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddDestination registers a destination with a fresh circuit breaker
// and zeroed health state. A duplicate name is rejected with
// ErrDuplicateDestination.
func (s *Shipper) AddDestination(destination Destination) error {
	if s.state.Load() != stateRunning {
		return ErrShutdown
	}
	return s.registry.add(destination)
}

// RemoveDestination unregisters a destination and discards its
// breaker and health state. A flush already in progress completes its
// attempt to the removed destination without corrupting anything.
func (s *Shipper) RemoveDestination(name string) error {
	if s.state.Load() != stateRunning {
		return ErrShutdown
	}
	return s.registry.remove(name)
}

// BufferSize reports the number of records currently buffered.
func (s *Shipper) BufferSize() int {
	return s.buffer.size()
}

// Health returns a snapshot of every destination's health, keyed by
// name.
func (s *Shipper) Health() map[string]DestinationHealth {
	entries := s.registry.snapshot()
	health := make(map[string]DestinationHealth, len(entries))
	for _, entry := range entries {
		health[entry.destination.Name] = entry.health.snapshot(entry.breaker.currentState())
	}
	return health
}

// DestinationHealth returns the health snapshot for one destination.
// The second return is false for an unknown name.
func (s *Shipper) DestinationHealth(name string) (DestinationHealth, bool) {
	entry, ok := s.registry.get(name)
	if !ok {
		return DestinationHealth{}, false
	}
	return entry.health.snapshot(entry.breaker.currentState()), true
}

// Stats folds the per-destination statistics into the aggregate view.
func (s *Shipper) Stats() Stats {
	entries := s.registry.snapshot()

	stats := Stats{
		BufferSize:   s.buffer.size(),
		Destinations: len(entries),
	}

	var latencyTotal time.Duration
	for _, entry := range entries {
		if entry.breaker.currentState() == CircuitOpen {
			stats.OpenCircuits++
			stats.UnhealthyDestinations++
		} else {
			stats.HealthyDestinations++
		}

		total, successful, failed, latency := entry.health.totals()
		stats.TotalRequests += total
		stats.SuccessfulRequests += successful
		stats.FailedRequests += failed
		latencyTotal += latency
	}

	// Weighted by request count: sum of all attempt latencies over
	// the total attempt count.
	if stats.TotalRequests > 0 {
		stats.AverageLatency = latencyTotal / time.Duration(stats.TotalRequests)
	}
	return stats
}
