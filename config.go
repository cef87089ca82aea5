// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/logship/lib/clock"
)

// DeliveryResult is the outcome of one delivery attempt to one
// destination. Err is nil for an acknowledged delivery; any failure
// (network error, timeout, non-success status) carries the cause.
type DeliveryResult struct {
	// Destination is the name of the destination attempted.
	Destination string

	// Records is the number of records in the delivered batch.
	Records int

	// Err is nil on success.
	Err error

	// Latency is how long the attempt took to complete, timeouts
	// included.
	Latency time.Duration

	// Time is when the attempt completed.
	Time time.Time
}

// Observer receives the outcome of every delivery attempt. It is
// called from the delivery goroutines after breaker and health state
// are updated; implementations must be safe for concurrent calls and
// should return quickly (hand off to a channel if the handling is
// slow).
type Observer interface {
	DeliveryCompleted(result DeliveryResult)
}

// Defaults applied by New. Documented on the corresponding Config
// fields.
const (
	DefaultBatchSize               = 100
	DefaultFlushInterval           = 5 * time.Second
	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerTimeout   = 30 * time.Second
	DefaultShutdownGrace           = 5 * time.Second
)

// Config configures a Shipper. The zero value of every field is
// usable; New applies the documented defaults and treats the result
// as immutable for the shipper's lifetime.
type Config struct {
	// Destinations are registered at construction. More can be added
	// and removed at runtime.
	Destinations []Destination

	// BatchSize is the record count that triggers an immediate
	// flush. Default DefaultBatchSize.
	BatchSize int

	// FlushInterval is the periodic flush period. Default
	// DefaultFlushInterval.
	FlushInterval time.Duration

	// MinLevel is the severity floor: records below it are dropped
	// before buffering and never count toward BatchSize. Default
	// LevelDebug (nothing dropped).
	MinLevel Level

	// DisableCircuitBreaker turns circuit breaking off entirely;
	// every destination is then treated as closed. The zero value
	// keeps breaking on.
	DisableCircuitBreaker bool

	// CircuitBreakerThreshold is the consecutive-failure count that
	// opens a destination's circuit. Default
	// DefaultCircuitBreakerThreshold.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long an open circuit waits before
	// admitting a recovery probe. Default
	// DefaultCircuitBreakerTimeout.
	CircuitBreakerTimeout time.Duration

	// Encoding is the canonical batch serialization. Default
	// EncodingJSON.
	Encoding Encoding

	// Observer, when set, receives every delivery outcome. Nil is
	// fine: outcomes are still reflected in health counters and the
	// shipper's log.
	Observer Observer

	// ShutdownGrace bounds the final delivery pass during Shutdown
	// when the caller's context has no earlier deadline. Default
	// DefaultShutdownGrace.
	ShutdownGrace time.Duration

	// Transport delivers payloads. Default: NewHTTPTransport(nil).
	Transport Transport

	// Clock provides time. Default clock.Real(); tests inject
	// clock.Fake().
	Clock clock.Clock

	// Logger receives the shipper's own structured log output
	// (delivery failures, lifecycle events). Default slog.Default().
	Logger *slog.Logger
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.CircuitBreakerThreshold == 0 {
		c.CircuitBreakerThreshold = DefaultCircuitBreakerThreshold
	}
	if c.CircuitBreakerTimeout == 0 {
		c.CircuitBreakerTimeout = DefaultCircuitBreakerTimeout
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
	if c.Transport == nil {
		c.Transport = NewHTTPTransport(nil)
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// validate checks the config after defaults are applied.
func (c Config) validate() error {
	if c.BatchSize < 0 {
		return fmt.Errorf("logship: negative batch size %d", c.BatchSize)
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("logship: negative flush interval %v", c.FlushInterval)
	}
	if c.CircuitBreakerThreshold < 0 {
		return fmt.Errorf("logship: negative circuit breaker threshold %d", c.CircuitBreakerThreshold)
	}
	if c.CircuitBreakerTimeout < 0 {
		return fmt.Errorf("logship: negative circuit breaker timeout %v", c.CircuitBreakerTimeout)
	}
	if !c.MinLevel.valid() {
		return fmt.Errorf("logship: invalid minimum level %d", int8(c.MinLevel))
	}
	if c.Encoding > EncodingCBOR {
		return fmt.Errorf("logship: invalid encoding %d", uint8(c.Encoding))
	}
	return nil
}
