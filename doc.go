// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logship ships structured log records from a process to one
// or more remote collectors without blocking the caller and without
// letting a failing collector degrade the rest of the pipeline.
//
// Records accepted by [Shipper.Log] accumulate in an in-memory buffer.
// A flush — triggered by the batch-size threshold, the periodic flush
// interval, an explicit [Shipper.Flush], or shutdown — drains the
// buffer atomically into an immutable batch and fans it out to every
// registered destination concurrently. Each destination has its own
// circuit breaker (sustained failure stops attempts entirely until a
// recovery probe succeeds), its own health counters, and its own
// per-attempt timeout, so one dead endpoint never blocks, slows, or
// fails delivery to the others.
//
// Failed batches are not retried: a delivery failure is terminal for
// that batch/destination pair and is surfaced through the configured
// [Observer] and the health counters, never as an error to the logging
// caller. There is no persistence — records still buffered at abrupt
// process termination are lost. A graceful [Shipper.Shutdown] drains
// the buffer and attempts one final delivery within a bounded grace
// period.
//
// Data flow:
//
//	Log → buffer (min-level filter) → flush → encode (+compress) → POST to each non-open destination
package logship
