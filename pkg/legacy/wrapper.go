// Package legacy loads rnote files written before the binary prelude
// existed: the whole file is gzip-compressed JSON of the shape
// {"version": "<semver>", "data": <schema>}. Each historical schema knows
// how to upgrade itself to the next one; loading an old file walks the
// chain up to the newest legacy schema, which lifts into the current
// engine snapshot.
package legacy

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ErrUnsupportedVersion means the wrapper's version string matched none of
// the known legacy version ranges.
var ErrUnsupportedVersion = errors.New("unsupported legacy file version")

// HasGzipMagic reports whether the buffer starts with the gzip magic
// number, the only way a legacy wrapper file can begin.
func HasGzipMagic(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// wrapper carries the version up front so it can be matched before the
// schema-specific data is deserialized.
type wrapper struct {
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// decompressGzip inflates a whole legacy file. The gzip trailer's ISIZE
// field (uncompressed size modulo 2^32, little-endian, last 4 bytes) seeds
// the output buffer capacity; it is a hint only and never trusted for
// anything else.
func decompressGzip(compressed []byte) ([]byte, error) {
	if len(compressed) < 4 {
		return nil, fmt.Errorf("not a valid gzip-compressed file: %d bytes", len(compressed))
	}
	isize := binary.LittleEndian.Uint32(compressed[len(compressed)-4:])

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, int(isize)))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("decompressing legacy file: %w", err)
	}
	return buf.Bytes(), nil
}

// toGeneric re-marshals a typed value into its generic JSON form.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
