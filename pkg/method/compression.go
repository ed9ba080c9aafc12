package method

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionKind enumerates the supported compression codecs. The set is
// closed: every switch over it carries a default branch that fails loudly,
// so a future codec cannot slip through half-wired.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionGzip
	CompressionZstd
)

// Valid numeric level ranges and defaults per codec.
const (
	GzipMinLevel     = 0
	GzipMaxLevel     = 9
	GzipDefaultLevel = 5

	ZstdMinLevel     = 0
	ZstdMaxLevel     = 22
	ZstdDefaultLevel = 9
)

// String returns the persisted identifier of the kind.
func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// CompressionMethod is a parameterized compression strategy. Level is
// meaningful for Gzip and Zstd only; for None it is always zero.
type CompressionMethod struct {
	Kind  CompressionKind
	Level int
}

// NoCompression returns the identity method.
func NoCompression() CompressionMethod {
	return CompressionMethod{Kind: CompressionNone}
}

// GzipCompression returns a gzip method at the codec's default level.
func GzipCompression() CompressionMethod {
	return CompressionMethod{Kind: CompressionGzip, Level: GzipDefaultLevel}
}

// ZstdCompression returns a zstd method at the codec's default level.
func ZstdCompression() CompressionMethod {
	return CompressionMethod{Kind: CompressionZstd, Level: ZstdDefaultLevel}
}

// DefaultCompression is the method used for fresh saves.
func DefaultCompression() CompressionMethod {
	return ZstdCompression()
}

// ParseCompressionMethod resolves a method identifier ("none", "gzip",
// "zstd", any case) to a method at that codec's default level.
func ParseCompressionMethod(s string) (CompressionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return NoCompression(), nil
	case "gzip":
		return GzipCompression(), nil
	case "zstd":
		return ZstdCompression(), nil
	default:
		return CompressionMethod{}, fmt.Errorf("%w: compression method %q", ErrUnknownMethod, s)
	}
}

// String renders the method with its level, e.g. "zstd(9)".
func (m CompressionMethod) String() string {
	switch m.Kind {
	case CompressionNone:
		return "none"
	case CompressionGzip, CompressionZstd:
		return fmt.Sprintf("%s(%d)", m.Kind, m.Level)
	default:
		return m.Kind.String()
	}
}

// levelRange returns the codec's valid level range. ok is false for None.
func (m CompressionMethod) levelRange() (min, max int, ok bool) {
	switch m.Kind {
	case CompressionGzip:
		return GzipMinLevel, GzipMaxLevel, true
	case CompressionZstd:
		return ZstdMinLevel, ZstdMaxLevel, true
	default:
		return 0, 0, false
	}
}

// Validate checks that the level is within the codec's valid range.
func (m CompressionMethod) Validate() error {
	min, max, ok := m.levelRange()
	if !ok {
		if m.Level != 0 {
			return fmt.Errorf("%w: %s carries level %d", ErrLevelOutOfRange, m.Kind, m.Level)
		}
		return nil
	}
	if m.Level < min || m.Level > max {
		return fmt.Errorf("%w: %s level %d not in %d..=%d", ErrLevelOutOfRange, m.Kind, m.Level, min, max)
	}
	return nil
}

// UpdateCompressionLevel sets a new numeric level after validating it
// against the codec's range. On failure the stored level is not mutated.
// For None there is nothing to update; ErrNoCompressionLevel reports that
// non-fatally.
func (m *CompressionMethod) UpdateCompressionLevel(level int) error {
	min, max, ok := m.levelRange()
	if !ok {
		return fmt.Errorf("%w (%s)", ErrNoCompressionLevel, m.Kind)
	}
	if level < min || level > max {
		return fmt.Errorf("%w: %s level %d not in %d..=%d", ErrLevelOutOfRange, m.Kind, level, min, max)
	}
	m.Level = level
	return nil
}

// Compress turns data into a possibly-smaller blob using the method's codec.
func (m CompressionMethod) Compress(data []byte) ([]byte, error) {
	switch m.Kind {
	case CompressionNone:
		return data, nil

	case CompressionGzip:
		var buf bytes.Buffer
		buf.Grow(len(data) / 2)
		w, err := gzip.NewWriterLevel(&buf, m.Level)
		if err != nil {
			return nil, fmt.Errorf("creating gzip encoder (level %d): %w", m.Level, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finishing gzip stream: %w", err)
		}
		return buf.Bytes(), nil

	case CompressionZstd:
		// Single-call encode; concurrency is opportunistic and does not
		// change the validity of the produced stream.
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(m.Level)),
			zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)),
		)
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder (level %d): %w", m.Level, err)
		}
		out := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("closing zstd encoder: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: compression kind %d", ErrUnknownMethod, m.Kind)
	}
}

// Decompress reverses Compress. ucSizeHint pre-sizes the output buffer; a
// wrong hint never causes failure or truncation, the decoder always reads to
// the actual end of stream.
func (m CompressionMethod) Decompress(ucSizeHint int, data []byte) ([]byte, error) {
	if ucSizeHint < 0 {
		ucSizeHint = 0
	}
	switch m.Kind {
	case CompressionNone:
		return data, nil

	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer r.Close()
		buf := bytes.NewBuffer(make([]byte, 0, ucSizeHint))
		if _, err := io.Copy(buf, r); err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		return buf.Bytes(), nil

	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, make([]byte, 0, ucSizeHint))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: compression kind %d", ErrUnknownMethod, m.Kind)
	}
}

// compressionMethodJSON is the persisted header shape of a method.
type compressionMethodJSON struct {
	Method string `json:"method"`
	Level  *int   `json:"level,omitempty"`
}

// MarshalJSON persists the method by identifier plus level.
func (m CompressionMethod) MarshalJSON() ([]byte, error) {
	out := compressionMethodJSON{Method: m.Kind.String()}
	if m.Kind != CompressionNone {
		level := m.Level
		out.Level = &level
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores and validates a persisted method.
func (m *CompressionMethod) UnmarshalJSON(data []byte) error {
	var in compressionMethodJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := ParseCompressionMethod(in.Method)
	if err != nil {
		return err
	}
	if in.Level != nil {
		if err := parsed.UpdateCompressionLevel(*in.Level); err != nil {
			return err
		}
	}
	*m = parsed
	return nil
}
