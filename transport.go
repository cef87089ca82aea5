// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Transport sends encoded batches to a destination. The pipeline
// depends on this interface so that tests can substitute a fake
// implementation without a network.
//
// Send and Probe must honor ctx cancellation and must classify any
// non-acknowledgement (network error, timeout, non-success status) as
// a returned error; the pipeline folds all of them into the single
// "delivery failure" outcome that drives the circuit breaker.
type Transport interface {
	// Send delivers one payload to the destination.
	Send(ctx context.Context, destination Destination, payload *Payload) error

	// Probe performs a lightweight connectivity check. It carries no
	// records and its outcome feeds neither the circuit breaker nor
	// the health counters.
	Probe(ctx context.Context, destination Destination) error
}

// StatusError is a delivery rejected by the collector with a
// non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Request headers set by HTTPTransport. The digest lets the collector
// verify payload integrity after decompression; the record count lets
// it account for batches without decoding them.
const (
	headerDigest  = "X-Logship-Digest"
	headerRecords = "X-Logship-Records"
	headerProbe   = "X-Logship-Probe"
)

// HTTPTransport delivers batches as HTTP POST requests. One shared
// http.Client serves all destinations; per-attempt deadlines come
// from each destination's Timeout via the request context.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses
// http.DefaultClient. The client should not set its own Timeout —
// per-destination timeouts are applied per request.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Send POSTs the payload to the destination's endpoint, bounded by
// the destination's timeout.
func (t *HTTPTransport) Send(ctx context.Context, destination Destination, payload *Payload) error {
	ctx, cancel := context.WithTimeout(ctx, destination.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, destination.Endpoint, bytes.NewReader(payload.Body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	request.Header.Set("Content-Type", payload.ContentType)
	if payload.ContentEncoding != "" {
		request.Header.Set("Content-Encoding", payload.ContentEncoding)
	}
	request.Header.Set(headerDigest, payload.Digest)
	request.Header.Set(headerRecords, strconv.Itoa(payload.Records))
	t.setCommonHeaders(request, destination)

	return t.do(request)
}

// Probe POSTs an empty body with the probe header set, bounded by the
// destination's timeout. Collectors treat probe requests as
// connectivity checks and do not ingest them.
func (t *HTTPTransport) Probe(ctx context.Context, destination Destination) error {
	ctx, cancel := context.WithTimeout(ctx, destination.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, destination.Endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	request.Header.Set(headerProbe, "1")
	t.setCommonHeaders(request, destination)

	return t.do(request)
}

func (t *HTTPTransport) setCommonHeaders(request *http.Request, destination Destination) {
	for key, value := range destination.Headers {
		request.Header.Set(key, value)
	}
	// Credential last so extra headers cannot override it.
	if destination.Token != "" {
		request.Header.Set("Authorization", "Bearer "+destination.Token)
	}
}

func (t *HTTPTransport) do(request *http.Request) error {
	response, err := t.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(response.Body, 4096))

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &StatusError{Code: response.StatusCode}
	}
	return nil
}
