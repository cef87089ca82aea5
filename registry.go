// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"fmt"
	"sort"
	"sync"
)

// destinationEntry binds a destination to its circuit breaker and
// health state. The three live and die together: removing a
// destination discards its breaker and counters with it.
type destinationEntry struct {
	destination Destination
	breaker     *breaker
	health      *healthState
}

// registry is the concurrency-safe set of delivery targets. Flushes
// iterate over a snapshot, so registry mutation never corrupts an
// in-progress delivery: a destination removed mid-flush completes or
// fails on its own and its final counter updates land in state that
// is simply no longer reachable.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*destinationEntry

	newBreaker func() *breaker
}

func newRegistry(makeBreaker func() *breaker) *registry {
	return &registry{
		entries:    make(map[string]*destinationEntry),
		newBreaker: makeBreaker,
	}
}

// add validates and registers a destination with a fresh breaker and
// health state. Duplicate names are rejected with
// ErrDuplicateDestination.
func (r *registry) add(destination Destination) error {
	validated, err := destination.validate()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[validated.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateDestination, validated.Name)
	}

	r.entries[validated.Name] = &destinationEntry{
		destination: validated,
		breaker:     r.newBreaker(),
		health:      &healthState{},
	}
	return nil
}

// remove unregisters a destination together with its breaker and
// health state.
func (r *registry) remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %q", ErrUnknownDestination, name)
	}
	delete(r.entries, name)
	return nil
}

// get returns the entry for a destination name.
func (r *registry) get(name string) (*destinationEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// snapshot returns the current entries sorted by name. The slice is
// the caller's; the entries it points to are shared live state.
func (r *registry) snapshot() []*destinationEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*destinationEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].destination.Name < entries[j].destination.Name
	})
	return entries
}

// size returns the number of registered destinations.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
