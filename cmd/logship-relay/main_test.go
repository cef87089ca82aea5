// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/logship"
)

func TestParseLine(t *testing.T) {
	line := []byte(`{"time":"2026-08-24T10:15:00Z","level":"warn","message":"disk filling","metadata":{"free_gb":3}}`)

	record, err := parseLine(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if record.Level != logship.LevelWarn {
		t.Fatalf("level: got %v", record.Level)
	}
	if record.Message != "disk filling" {
		t.Fatalf("message: got %q", record.Message)
	}
	want := time.Date(2026, 8, 24, 10, 15, 0, 0, time.UTC)
	if !record.Time.Equal(want) {
		t.Fatalf("time: got %v", record.Time)
	}
	if record.Metadata["free_gb"] != float64(3) {
		t.Fatalf("metadata: %v", record.Metadata)
	}
}

func TestParseLineOmittedTimeIsZero(t *testing.T) {
	record, err := parseLine([]byte(`{"level":"info","message":"no stamp"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// The shipper stamps zero times on acceptance.
	if !record.Time.IsZero() {
		t.Fatalf("time: got %v, want zero", record.Time)
	}
}

func TestParseLineRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"not json", "plain text"},
		{"truncated", `{"level":"info"`},
		{"unknown field", `{"level":"info","mesage":"typo"}`},
		{"bad level", `{"level":"loud","message":"x"}`},
	}
	for _, tc := range cases {
		if _, err := parseLine([]byte(tc.line)); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestDeliveryCounter(t *testing.T) {
	counter := &deliveryCounter{}

	counter.DeliveryCompleted(logship.DeliveryResult{Destination: "a"})
	counter.DeliveryCompleted(logship.DeliveryResult{Destination: "a"})
	counter.DeliveryCompleted(logship.DeliveryResult{Destination: "b", Err: errors.New("boom")})

	succeeded, failed := counter.totals()
	if succeeded != 2 || failed != 1 {
		t.Fatalf("totals: got %d/%d, want 2/1", succeeded, failed)
	}
}
