// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of Config. Durations, levels, and tags
// are strings in the file and converted explicitly; omitted fields
// fall through to the Config defaults.
type fileConfig struct {
	BatchSize               int               `yaml:"batch_size"`
	FlushInterval           string            `yaml:"flush_interval"`
	MinLevel                string            `yaml:"min_level"`
	Encoding                string            `yaml:"encoding"`
	DisableCircuitBreaker   bool              `yaml:"disable_circuit_breaker"`
	CircuitBreakerThreshold int               `yaml:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   string            `yaml:"circuit_breaker_timeout"`
	ShutdownGrace           string            `yaml:"shutdown_grace"`
	Destinations            []fileDestination `yaml:"destinations"`
}

type fileDestination struct {
	Name        string            `yaml:"name"`
	Endpoint    string            `yaml:"endpoint"`
	Token       string            `yaml:"token"`
	Headers     map[string]string `yaml:"headers"`
	Timeout     string            `yaml:"timeout"`
	Compression string            `yaml:"compression"`
}

// LoadConfig reads a Config from a YAML file. There is exactly one
// config source — the given path — with no environment fallbacks or
// discovery; unknown fields are an error so typos surface instead of
// silently falling back to defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("logship: reading config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	var file fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return Config{}, fmt.Errorf("logship: parsing config: %w", err)
	}

	config := Config{
		BatchSize:               file.BatchSize,
		DisableCircuitBreaker:   file.DisableCircuitBreaker,
		CircuitBreakerThreshold: file.CircuitBreakerThreshold,
	}

	var err error
	if config.FlushInterval, err = parseDuration("flush_interval", file.FlushInterval); err != nil {
		return Config{}, err
	}
	if config.CircuitBreakerTimeout, err = parseDuration("circuit_breaker_timeout", file.CircuitBreakerTimeout); err != nil {
		return Config{}, err
	}
	if config.ShutdownGrace, err = parseDuration("shutdown_grace", file.ShutdownGrace); err != nil {
		return Config{}, err
	}

	if file.MinLevel != "" {
		if config.MinLevel, err = ParseLevel(file.MinLevel); err != nil {
			return Config{}, fmt.Errorf("logship: min_level: %w", err)
		}
	}
	if config.Encoding, err = ParseEncoding(file.Encoding); err != nil {
		return Config{}, fmt.Errorf("logship: encoding: %w", err)
	}

	for _, entry := range file.Destinations {
		destination := Destination{
			Name:     entry.Name,
			Endpoint: entry.Endpoint,
			Token:    entry.Token,
			Headers:  entry.Headers,
		}
		if destination.Timeout, err = parseDuration("timeout", entry.Timeout); err != nil {
			return Config{}, fmt.Errorf("logship: destination %q: %w", entry.Name, err)
		}
		if destination.Compression, err = ParseCompressionTag(entry.Compression); err != nil {
			return Config{}, fmt.Errorf("logship: destination %q: %w", entry.Name, err)
		}
		config.Destinations = append(config.Destinations, destination)
	}

	return config, nil
}

// parseDuration converts a config duration string; empty means unset
// (zero), which New resolves to the field's default.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("logship: %s: %w", field, err)
	}
	return parsed, nil
}
