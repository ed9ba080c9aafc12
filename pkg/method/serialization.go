package method

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/ugorji/go/codec"

	"github.com/flxzt/rnotefmt/pkg/snapshot"
)

// SerializationMethod enumerates the snapshot codecs. The identifiers are
// persisted in file headers; do not rename them.
type SerializationMethod uint8

const (
	SerializationJSON SerializationMethod = iota
	SerializationBincode
	SerializationBitcode
	SerializationPostcard
)

// DefaultSerialization is the method used for fresh saves. Stable across
// releases.
func DefaultSerialization() SerializationMethod {
	return SerializationBitcode
}

// String returns the persisted identifier of the method.
func (m SerializationMethod) String() string {
	switch m {
	case SerializationJSON:
		return "json"
	case SerializationBincode:
		return "bincode"
	case SerializationBitcode:
		return "bitcode"
	case SerializationPostcard:
		return "postcard"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(m))
	}
}

// ParseSerializationMethod resolves a method identifier, any case.
func ParseSerializationMethod(s string) (SerializationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return SerializationJSON, nil
	case "bincode":
		return SerializationBincode, nil
	case "bitcode":
		return SerializationBitcode, nil
	case "postcard":
		return SerializationPostcard, nil
	default:
		return 0, fmt.Errorf("%w: serialization method %q", ErrUnknownMethod, s)
	}
}

// Serialize turns a snapshot into bytes with the method's codec.
func (m SerializationMethod) Serialize(snap *snapshot.EngineSnapshot) ([]byte, error) {
	switch m {
	case SerializationJSON:
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("json serialize: %w", err)
		}
		return data, nil

	case SerializationBincode:
		var out []byte
		h := new(codec.BincHandle)
		if err := codec.NewEncoderBytes(&out, h).Encode(snap); err != nil {
			return nil, fmt.Errorf("bincode serialize: %w", err)
		}
		return out, nil

	case SerializationBitcode:
		data, err := cbor.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("bitcode serialize: %w", err)
		}
		return data, nil

	case SerializationPostcard:
		var out []byte
		h := new(codec.MsgpackHandle)
		if err := codec.NewEncoderBytes(&out, h).Encode(snap); err != nil {
			return nil, fmt.Errorf("postcard serialize: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: serialization method %d", ErrUnknownMethod, uint8(m))
	}
}

// Deserialize turns bytes back into a snapshot. The JSON method decodes
// through a generic value first, which tolerates unknown fields written by
// other document versions; the binary methods decode directly.
func (m SerializationMethod) Deserialize(data []byte) (*snapshot.EngineSnapshot, error) {
	snap := new(snapshot.EngineSnapshot)

	switch m {
	case SerializationJSON:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("json deserialize: %w", err)
		}
		normalized, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("json deserialize: %w", err)
		}
		if err := json.Unmarshal(normalized, snap); err != nil {
			return nil, fmt.Errorf("json deserialize: %w", err)
		}
		return snap, nil

	case SerializationBincode:
		h := new(codec.BincHandle)
		if err := codec.NewDecoderBytes(data, h).Decode(snap); err != nil {
			return nil, fmt.Errorf("bincode deserialize: %w", err)
		}
		return snap, nil

	case SerializationBitcode:
		if err := cbor.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("bitcode deserialize: %w", err)
		}
		return snap, nil

	case SerializationPostcard:
		h := new(codec.MsgpackHandle)
		if err := codec.NewDecoderBytes(data, h).Decode(snap); err != nil {
			return nil, fmt.Errorf("postcard deserialize: %w", err)
		}
		return snap, nil

	default:
		return nil, fmt.Errorf("%w: serialization method %d", ErrUnknownMethod, uint8(m))
	}
}

// MarshalJSON persists the method as its identifier string.
func (m SerializationMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON restores a persisted method identifier.
func (m *SerializationMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSerializationMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
