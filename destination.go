// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"fmt"
	"net/url"
	"time"
)

// defaultDestinationTimeout bounds a delivery attempt when the
// destination does not set its own timeout.
const defaultDestinationTimeout = 10 * time.Second

// Destination is one delivery target. The registry owns the canonical
// copy; the delivery pipeline and health tracker refer to it by Name.
type Destination struct {
	// Name uniquely identifies the destination within the shipper.
	Name string

	// Endpoint is the collector URL batches are POSTed to.
	Endpoint string

	// Token, when set, is sent as a bearer Authorization header.
	Token string

	// Headers are extra headers attached to every request, e.g. a
	// tenant ID. Authorization and the payload headers cannot be
	// overridden here.
	Headers map[string]string

	// Timeout bounds each delivery attempt to this destination.
	// Zero means defaultDestinationTimeout.
	Timeout time.Duration

	// Compression is the content coding applied to payloads for
	// this destination. Zero value is uncompressed.
	Compression CompressionTag
}

// validate checks the fields a destination needs before registration
// and returns a copy with defaults applied.
func (d Destination) validate() (Destination, error) {
	if d.Name == "" {
		return d, fmt.Errorf("logship: destination name must not be empty")
	}
	if d.Endpoint == "" {
		return d, fmt.Errorf("logship: destination %q: endpoint must not be empty", d.Name)
	}
	parsed, err := url.Parse(d.Endpoint)
	if err != nil {
		return d, fmt.Errorf("logship: destination %q: invalid endpoint: %w", d.Name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return d, fmt.Errorf("logship: destination %q: endpoint scheme must be http or https (got %q)", d.Name, parsed.Scheme)
	}
	if d.Timeout < 0 {
		return d, fmt.Errorf("logship: destination %q: negative timeout", d.Name)
	}
	if d.Timeout == 0 {
		d.Timeout = defaultDestinationTimeout
	}
	if d.Compression > CompressionLZ4 {
		return d, fmt.Errorf("logship: destination %q: invalid compression tag %d", d.Name, uint8(d.Compression))
	}
	return d, nil
}
