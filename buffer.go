// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import "sync"

// buffer accumulates records between flushes. Arbitrary goroutines
// add concurrently; the flush loop drains. The append/drain
// discipline guarantees every accepted record appears in exactly one
// batch.
//
// The notify channel (capacity 1) wakes the flush loop when the
// buffer reaches the batch-size threshold. Signals coalesce: the loop
// checks the actual size when it wakes.
type buffer struct {
	mu        sync.Mutex
	records   []Record
	threshold int
	notify    chan struct{}
}

func newBuffer(threshold int) *buffer {
	return &buffer{
		threshold: threshold,
		notify:    make(chan struct{}, 1),
	}
}

// add appends a record. Never blocks: if the buffer is at or past the
// threshold the notify signal is sent non-blocking.
func (b *buffer) add(record Record) {
	b.mu.Lock()
	b.records = append(b.records, record)
	full := len(b.records) >= b.threshold
	b.mu.Unlock()

	if full {
		select {
		case b.notify <- struct{}{}:
		default:
		}
	}
}

// drain atomically swaps the accumulated records for an empty buffer
// and returns them in insertion order. This is the only way records
// leave the buffer.
func (b *buffer) drain() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.records
	b.records = nil
	return drained
}

// size returns the current record count.
func (b *buffer) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
