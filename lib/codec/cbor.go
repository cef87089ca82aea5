// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides CBOR encoding for batch payloads.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// The same batch always produces identical bytes, which keeps payload
// digests stable across retries and processes.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Log record timestamps need sub-second precision; the
	// deterministic default truncates to whole seconds.
	encOptions.Time = cbor.TimeUnixMicro
	// Types implementing encoding.TextMarshaler (logship.Level)
	// serialize as CBOR text strings, keeping the CBOR and JSON
	// payload shapes identical.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Record metadata decodes into map[string]any values. The
		// CBOR default for any-typed targets is
		// map[interface{}]interface{}, which nothing downstream
		// (encoding/json included) can consume.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Mirror of the TextMarshaler setting above for round-trip
		// correctness.
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value. Consumers import only
// lib/codec, not fxamacker/cbor directly.
type RawMessage = cbor.RawMessage
