// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/logship"
)

const relayVersion = "0.3.0"

// maxLineBytes bounds a single input line. Records larger than this
// are malformed by definition and skipped.
const maxLineBytes = 1 << 20

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath    string
		minLevel      string
		flushInterval time.Duration
		batchSize     int
		showVersion   bool
	)

	flagSet := pflag.NewFlagSet("logship-relay", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (required)")
	flagSet.StringVar(&minLevel, "min-level", "", "override the config's minimum severity (debug, info, warn, error)")
	flagSet.DurationVar(&flushInterval, "flush-interval", 0, "override the config's flush interval")
	flagSet.IntVar(&batchSize, "batch-size", 0, "override the config's batch size")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("logship-relay %s\n", relayVersion)
		return nil
	}
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	config, err := logship.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if minLevel != "" {
		if config.MinLevel, err = logship.ParseLevel(minLevel); err != nil {
			return err
		}
	}
	if flushInterval > 0 {
		config.FlushInterval = flushInterval
	}
	if batchSize > 0 {
		config.BatchSize = batchSize
	}
	config.Logger = logger

	counter := &deliveryCounter{}
	config.Observer = counter

	shipper, err := logship.New(config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("relay running",
		"destinations", len(config.Destinations),
		"batch_size", config.BatchSize,
		"flush_interval", config.FlushInterval,
	)

	// The scanner blocks in the stdin read; closing stdin on signal
	// unblocks it so the read loop can fall through to shutdown.
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	var accepted, malformed uint64
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		record, err := parseLine(line)
		if err != nil {
			malformed++
			logger.Warn("skipping malformed record", "error", err)
			continue
		}
		if err := shipper.Log(record); err != nil {
			logger.Warn("record rejected", "error", err)
			continue
		}
		accepted++
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("stdin read failed", "error", err)
	}

	if err := shipper.Shutdown(context.Background()); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}

	succeeded, failed := counter.totals()
	logger.Info("relay exiting",
		"accepted", accepted,
		"malformed", malformed,
		"deliveries_succeeded", succeeded,
		"deliveries_failed", failed,
	)
	return nil
}

// parseLine decodes one NDJSON input line into a record. Unknown
// fields are rejected so that a typoed field name ("mesage") surfaces
// instead of silently shipping an empty record.
func parseLine(line []byte) (logship.Record, error) {
	var record logship.Record
	decoder := json.NewDecoder(bytes.NewReader(line))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&record); err != nil {
		return logship.Record{}, err
	}
	return record, nil
}

// deliveryCounter tallies delivery outcomes for the exit summary.
type deliveryCounter struct {
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

func (c *deliveryCounter) DeliveryCompleted(result logship.DeliveryResult) {
	if result.Err != nil {
		c.failed.Add(1)
		return
	}
	c.succeeded.Add(1)
}

func (c *deliveryCounter) totals() (succeeded, failed uint64) {
	return c.succeeded.Load(), c.failed.Load()
}
