package rnotefile

import (
	"encoding/json"
	"fmt"

	"github.com/flxzt/rnotefmt/pkg/method"
)

// RnoteHeader is the serialization-codec-agnostic metadata record stored
// right after the prelude.
type RnoteHeader struct {
	// Serialization is the method the body's payload was serialized with.
	Serialization method.SerializationMethod `json:"serialization"`
	// Compression is the method the body was compressed with.
	Compression method.CompressionMethod `json:"compression"`
	// UncompressedSize is the exact byte length of the serialized payload
	// before compression. It pre-sizes the decompression buffer on load; a
	// mismatch is not treated as corruption, the decoder recovers the true
	// size from the stream itself.
	UncompressedSize uint64 `json:"uc_size"`
	// MethodLock pins the file to its current method choice: re-save
	// operations must not silently normalize a locked file back to default
	// methods. Policy is enforced by callers, not by the container.
	MethodLock bool `json:"method_lock"`
}

// DefaultHeader returns a header carrying the application's current default
// methods.
func DefaultHeader() RnoteHeader {
	return RnoteHeader{
		Serialization: method.DefaultSerialization(),
		Compression:   method.DefaultCompression(),
	}
}

// encode serializes the header block. The block's length is recorded in the
// prelude, never re-derived by reparsing.
func (h RnoteHeader) encode() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	return data, nil
}

// decodeHeader parses a header block of exactly the prelude-declared length.
func decodeHeader(data []byte) (RnoteHeader, error) {
	var h RnoteHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return h, nil
}
