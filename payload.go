// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logship

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/logship/lib/codec"
)

// Encoding selects the canonical batch serialization.
type Encoding uint8

const (
	// EncodingJSON serializes a batch as a JSON array of record
	// objects. The default: every collector speaks it.
	EncodingJSON Encoding = 0

	// EncodingCBOR serializes a batch with deterministic CBOR
	// (lib/codec). Smaller payloads, byte-identical re-encoding.
	EncodingCBOR Encoding = 1
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ParseEncoding parses an encoding name. The empty string parses as
// EncodingJSON so that an omitted config field means the default.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "", "json":
		return EncodingJSON, nil
	case "cbor":
		return EncodingCBOR, nil
	default:
		return 0, fmt.Errorf("logship: unknown encoding %q", name)
	}
}

// contentType returns the MIME type sent with payloads of this
// encoding.
func (e Encoding) contentType() string {
	if e == EncodingCBOR {
		return "application/cbor"
	}
	return "application/json"
}

// Payload is one encoded, optionally compressed batch as handed to a
// [Transport]. The same underlying batch produces one Payload per
// distinct compression tag among the eligible destinations; payloads
// are immutable and safe to share across concurrent sends.
type Payload struct {
	// Body is the encoded (and possibly compressed) batch.
	Body []byte

	// ContentType is "application/json" or "application/cbor".
	ContentType string

	// ContentEncoding is the content coding of Body ("gzip", "zstd",
	// "lz4"), or "" when Body is uncompressed.
	ContentEncoding string

	// Digest is "blake3:<hex>" over the uncompressed Body, letting
	// the collector verify integrity independent of transport
	// compression.
	Digest string

	// Records is the number of records in the batch.
	Records int
}

// encodeBatch serializes a batch into its canonical bytes and digest.
func encodeBatch(batch []Record, encoding Encoding) (body []byte, digest string, err error) {
	switch encoding {
	case EncodingJSON:
		body, err = json.Marshal(batch)
	case EncodingCBOR:
		body, err = codec.Marshal(batch)
	default:
		err = fmt.Errorf("logship: unsupported encoding: %d", encoding)
	}
	if err != nil {
		return nil, "", err
	}

	sum := blake3.Sum256(body)
	return body, "blake3:" + hex.EncodeToString(sum[:]), nil
}

// payloadSet builds the per-compression payloads for one batch. The
// encode happens once; each distinct compression tag among the
// destinations is compressed once and shared.
type payloadSet struct {
	encoded  []byte
	digest   string
	mimeType string
	records  int
	byTag    map[CompressionTag]*Payload
}

func newPayloadSet(batch []Record, encoding Encoding) (*payloadSet, error) {
	body, digest, err := encodeBatch(batch, encoding)
	if err != nil {
		return nil, err
	}
	return &payloadSet{
		encoded:  body,
		digest:   digest,
		mimeType: encoding.contentType(),
		records:  len(batch),
		byTag:    make(map[CompressionTag]*Payload),
	}, nil
}

// payload returns the Payload for a compression tag, compressing on
// first use. Not safe for concurrent use: the delivery pipeline
// prepares all needed payloads before fanning out.
func (set *payloadSet) payload(tag CompressionTag) (*Payload, error) {
	if existing, ok := set.byTag[tag]; ok {
		return existing, nil
	}

	body, err := compress(set.encoded, tag)
	if err != nil {
		return nil, err
	}

	built := &Payload{
		Body:            body,
		ContentType:     set.mimeType,
		ContentEncoding: tag.contentEncoding(),
		Digest:          set.digest,
		Records:         set.records,
	}
	set.byTag[tag] = built
	return built, nil
}
