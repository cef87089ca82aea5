// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Production code takes a Clock instead of calling time.Now,
// time.After, time.NewTicker, or time.Sleep directly. Real() is backed
// by the standard library; Fake() is a deterministic clock for tests
// that advances only when Advance is called.
//
// A goroutine that calls After, NewTicker, or Sleep on a FakeClock
// registers a pending waiter. Tests use WaitForTimers to block until
// the waiter exists before calling Advance, which removes the race
// between timer registration and time advancement:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	shipper := New(Config{Clock: c, ...})
//	c.WaitForTimers(1)            // flush ticker is armed
//	c.Advance(5 * time.Second)    // fires it deterministically
package clock
