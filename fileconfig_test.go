// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const fullConfigYAML = `
batch_size: 250
flush_interval: 2s
min_level: warn
encoding: cbor
disable_circuit_breaker: false
circuit_breaker_threshold: 3
circuit_breaker_timeout: 45s
shutdown_grace: 10s
destinations:
  - name: primary
    endpoint: https://collector.example/ingest
    token: s3cret
    headers:
      X-Tenant: acme
    timeout: 15s
    compression: zstd
  - name: backup
    endpoint: https://backup.example/ingest
`

func TestParseConfigFull(t *testing.T) {
	config, err := parseConfig([]byte(fullConfigYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if config.BatchSize != 250 {
		t.Errorf("batch size: got %d", config.BatchSize)
	}
	if config.FlushInterval != 2*time.Second {
		t.Errorf("flush interval: got %v", config.FlushInterval)
	}
	if config.MinLevel != LevelWarn {
		t.Errorf("min level: got %v", config.MinLevel)
	}
	if config.Encoding != EncodingCBOR {
		t.Errorf("encoding: got %v", config.Encoding)
	}
	if config.CircuitBreakerThreshold != 3 {
		t.Errorf("breaker threshold: got %d", config.CircuitBreakerThreshold)
	}
	if config.CircuitBreakerTimeout != 45*time.Second {
		t.Errorf("breaker timeout: got %v", config.CircuitBreakerTimeout)
	}
	if config.ShutdownGrace != 10*time.Second {
		t.Errorf("shutdown grace: got %v", config.ShutdownGrace)
	}

	if len(config.Destinations) != 2 {
		t.Fatalf("destinations: got %d, want 2", len(config.Destinations))
	}
	primary := config.Destinations[0]
	if primary.Name != "primary" || primary.Token != "s3cret" {
		t.Errorf("primary: %+v", primary)
	}
	if primary.Headers["X-Tenant"] != "acme" {
		t.Errorf("primary headers: %v", primary.Headers)
	}
	if primary.Timeout != 15*time.Second {
		t.Errorf("primary timeout: got %v", primary.Timeout)
	}
	if primary.Compression != CompressionZstd {
		t.Errorf("primary compression: got %v", primary.Compression)
	}

	backup := config.Destinations[1]
	if backup.Compression != CompressionNone {
		t.Errorf("backup compression: got %v", backup.Compression)
	}
	if backup.Timeout != 0 {
		t.Errorf("backup timeout: got %v, want 0 (defaulted at registration)", backup.Timeout)
	}
}

func TestParseConfigOmittedFieldsStayZero(t *testing.T) {
	config, err := parseConfig([]byte("destinations:\n  - name: d\n    endpoint: http://localhost:8080\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.BatchSize != 0 || config.FlushInterval != 0 {
		t.Fatalf("omitted fields not zero: %+v", config)
	}
	if config.MinLevel != LevelDebug || config.Encoding != EncodingJSON {
		t.Fatalf("omitted level/encoding: %v, %v", config.MinLevel, config.Encoding)
	}
}

func TestParseConfigRejectsUnknownField(t *testing.T) {
	if _, err := parseConfig([]byte("batch_sise: 10\n")); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad duration", "flush_interval: soon\n"},
		{"bad level", "min_level: loud\n"},
		{"bad encoding", "encoding: xml\n"},
		{"bad compression", "destinations:\n  - name: d\n    endpoint: http://x\n    compression: brotli\n"},
		{"bad destination timeout", "destinations:\n  - name: d\n    endpoint: http://x\n    timeout: fast\n"},
	}
	for _, tc := range cases {
		if _, err := parseConfig([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logship.yaml")
	if err := os.WriteFile(path, []byte(fullConfigYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(config.Destinations) != 2 {
		t.Fatalf("destinations: got %d", len(config.Destinations))
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
