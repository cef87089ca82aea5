// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression applied to a batch
// payload before it is sent. The tag maps directly to the HTTP
// Content-Encoding header, so the collector can decode with standard
// tooling.
type CompressionTag uint8

const (
	// CompressionNone sends the encoded batch uncompressed.
	CompressionNone CompressionTag = 0

	// CompressionGzip is the widest-supported content coding.
	// Reasonable ratios on JSON log batches (~5-10x) at moderate
	// CPU cost.
	CompressionGzip CompressionTag = 1

	// CompressionZstd compresses better and faster than gzip but
	// requires collector support for the "zstd" content coding.
	CompressionZstd CompressionTag = 2

	// CompressionLZ4 (frame format) trades ratio for the lowest CPU
	// cost. For collectors on the same network where bandwidth is
	// cheap and the shipper's CPU budget is tight.
	CompressionLZ4 CompressionTag = 3
)

// String returns the content-coding name of the tag, or "none".
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseCompressionTag parses a compression tag from its string form.
// The empty string parses as CompressionNone so that an omitted
// config field means "uncompressed".
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("logship: unknown compression tag %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler for config files.
func (tag CompressionTag) MarshalText() ([]byte, error) {
	if tag > CompressionLZ4 {
		return nil, fmt.Errorf("logship: cannot marshal invalid compression tag %d", uint8(tag))
	}
	return []byte(tag.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (tag *CompressionTag) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressionTag(string(text))
	if err != nil {
		return err
	}
	*tag = parsed
	return nil
}

// contentEncoding returns the Content-Encoding header value for the
// tag, or "" for CompressionNone.
func (tag CompressionTag) contentEncoding() string {
	if tag == CompressionNone {
		return ""
	}
	return tag.String()
}

// zstdEncoder and zstdDecoder are shared across all destinations.
// Both are safe for concurrent use; per-call allocation of a zstd
// context would dominate the cost of small batches.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("logship: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("logship: zstd decoder initialization failed: " + err.Error())
	}
}

// compress applies the tagged compression to an encoded batch. For
// CompressionNone the input is returned unchanged (no copy). Unlike a
// storage layer, the pipeline never falls back to "none" for
// incompressible data: the Content-Encoding header is fixed per
// destination and the collector expects it.
func compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionGzip:
		var buf bytes.Buffer
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		return buf.Bytes(), nil

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		// Frame format rather than block format: the collector has
		// no out-of-band uncompressed size, so the payload must be
		// self-describing.
		var buf bytes.Buffer
		writer := lz4.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("logship: unsupported compression tag: %d", tag)
	}
}

// decompress reverses compress. Used by tests and by collectors built
// on this package.
func decompress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer reader.Close()
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		return decoded, nil

	case CompressionZstd:
		decoded, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return decoded, nil

	case CompressionLZ4:
		decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("logship: unsupported compression tag: %d", tag)
	}
}
