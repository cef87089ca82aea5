// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import "fmt"

// Level is the severity of a log record. Levels are ordered: a
// record is shipped only if its level is at or above the configured
// minimum.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel parses a level name. Accepts "warning" as an alias for
// "warn".
func ParseLevel(name string) (Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("logship: unknown level %q", name)
	}
}

// valid reports whether l is one of the defined levels.
func (l Level) valid() bool {
	return l >= LevelDebug && l <= LevelError
}

// MarshalText implements encoding.TextMarshaler. Levels appear as
// their names in JSON and CBOR payloads.
func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("logship: cannot marshal invalid level %d", int8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
