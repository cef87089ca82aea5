// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransportSendHeadersAndBody(t *testing.T) {
	type captured struct {
		header http.Header
		body   []byte
	}
	received := make(chan captured, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- captured{header: r.Header.Clone(), body: body}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	set, err := newPayloadSet(payloadBatch(), EncodingJSON)
	if err != nil {
		t.Fatalf("newPayloadSet: %v", err)
	}
	payload, err := set.payload(CompressionGzip)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	destination := Destination{
		Name:     "primary",
		Endpoint: server.URL,
		Token:    "s3cret",
		Headers:  map[string]string{"X-Tenant": "acme"},
		Timeout:  5 * time.Second,
	}

	transport := NewHTTPTransport(nil)
	if err := transport.Send(context.Background(), destination, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := <-received
	checks := map[string]string{
		"Content-Type":      "application/json",
		"Content-Encoding":  "gzip",
		"Authorization":     "Bearer s3cret",
		"X-Tenant":          "acme",
		"X-Logship-Digest":  payload.Digest,
		"X-Logship-Records": "3",
	}
	for key, want := range checks {
		if have := got.header.Get(key); have != want {
			t.Errorf("header %s: got %q, want %q", key, have, want)
		}
	}

	restored, err := decompress(got.body, CompressionGzip)
	if err != nil {
		t.Fatalf("decompress received body: %v", err)
	}
	if string(restored) != string(set.encoded) {
		t.Fatal("received body does not match the encoded batch")
	}
}

func TestHTTPTransportExtraHeadersCannotOverrideAuthorization(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("Authorization")
	}))
	defer server.Close()

	destination := Destination{
		Name:     "primary",
		Endpoint: server.URL,
		Token:    "real-token",
		Headers:  map[string]string{"Authorization": "Bearer forged"},
		Timeout:  5 * time.Second,
	}

	transport := NewHTTPTransport(nil)
	if err := transport.Probe(context.Background(), destination); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if auth := <-received; auth != "Bearer real-token" {
		t.Fatalf("authorization: got %q", auth)
	}
}

func TestHTTPTransportNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	destination := Destination{Name: "primary", Endpoint: server.URL, Timeout: 5 * time.Second}

	set, err := newPayloadSet(payloadBatch(), EncodingJSON)
	if err != nil {
		t.Fatalf("newPayloadSet: %v", err)
	}
	payload, err := set.payload(CompressionNone)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	transport := NewHTTPTransport(nil)
	err = transport.Send(context.Background(), destination, payload)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("got %v, want StatusError", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d, want 429", statusErr.Code)
	}
}

func TestHTTPTransportProbeSendsEmptyMarkedRequest(t *testing.T) {
	type probe struct {
		marker string
		length int64
	}
	received := make(chan probe, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- probe{marker: r.Header.Get("X-Logship-Probe"), length: r.ContentLength}
	}))
	defer server.Close()

	destination := Destination{Name: "primary", Endpoint: server.URL, Timeout: 5 * time.Second}
	transport := NewHTTPTransport(nil)
	if err := transport.Probe(context.Background(), destination); err != nil {
		t.Fatalf("probe: %v", err)
	}

	got := <-received
	if got.marker != "1" {
		t.Fatalf("probe marker: got %q", got.marker)
	}
	if got.length != 0 {
		t.Fatalf("probe body length: got %d, want 0", got.length)
	}
}

func TestHTTPTransportHonorsDestinationTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	destination := Destination{Name: "slow", Endpoint: server.URL, Timeout: 50 * time.Millisecond}
	transport := NewHTTPTransport(nil)

	start := time.Now()
	err := transport.Probe(context.Background(), destination)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took %v", elapsed)
	}
}
