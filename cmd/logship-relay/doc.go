// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Logship-relay reads newline-delimited JSON log records from stdin
// and ships them to the collectors named in its config file.
//
// Each input line is one record:
//
//	{"time":"2026-08-24T10:15:00Z","level":"info","message":"started","metadata":{"service":"api"}}
//
// A missing time is stamped on acceptance; malformed lines are logged
// and skipped, never fatal. On SIGINT/SIGTERM or stdin EOF the relay
// drains its buffer with one final delivery pass before exiting.
//
// Data flow:
//
//	stdin → parse → shipper buffer → flush (size/interval) → POST to each destination
//
// Configuration comes from a single YAML file (--config); see
// logship.LoadConfig for the schema. Command-line overrides exist for
// the common tuning knobs.
package main
