// Package rnotefile implements the rnote document container: a binary
// prelude, a header describing the codec choices, and a compressed body
// holding the serialized engine snapshot. It also routes files written by
// historical releases through the legacy upgrade chain.
package rnotefile

import (
	"fmt"

	"github.com/flxzt/rnotefmt/pkg/legacy"
	"github.com/flxzt/rnotefmt/pkg/method"
	"github.com/flxzt/rnotefmt/pkg/snapshot"
)

// RnoteFile is the in-memory form of the on-disk container. Body is the
// compressed, serialized engine snapshot; the header describes exactly how
// to reverse that.
type RnoteFile struct {
	Header RnoteHeader
	Body   []byte
}

// New builds a fresh container from a snapshot. The snapshot is serialized
// with the header's serialization method, the resulting byte length recorded
// as UncompressedSize, and the payload compressed with the header's
// compression method. That order matters: the recorded size is measured on
// the actual serialized bytes so the load path can pre-size its buffers.
func New(header RnoteHeader, snap *snapshot.EngineSnapshot) (*RnoteFile, error) {
	payload, err := header.Serialization.Serialize(snap)
	if err != nil {
		return nil, stageErr(StageSerialize, err)
	}
	header.UncompressedSize = uint64(len(payload))

	body, err := header.Compression.Compress(payload)
	if err != nil {
		return nil, stageErr(StageCompress, err)
	}

	return &RnoteFile{Header: header, Body: body}, nil
}

// SaveAsBytes emits the complete on-disk byte layout:
// prelude ++ header block ++ compressed body.
func (f *RnoteFile) SaveAsBytes() ([]byte, error) {
	headerBytes, err := f.Header.encode()
	if err != nil {
		return nil, stageErr(StageParseHeader, err)
	}

	prelude := Prelude{
		FileFormatVersion: CurrentFileFormatVersion,
		ProducerVersion:   ProducerVersion,
		HeaderSize:        len(headerBytes),
	}
	preludeBytes, err := prelude.Encode()
	if err != nil {
		return nil, stageErr(StageParsePrelude, err)
	}

	out := make([]byte, 0, len(preludeBytes)+len(headerBytes)+len(f.Body))
	out = append(out, preludeBytes...)
	out = append(out, headerBytes...)
	out = append(out, f.Body...)
	return out, nil
}

// LoadFromBytes parses a container from a byte buffer.
//
// A buffer starting with the binary prelude magic is parsed as the current
// format; an unknown file-format version behind the magic is
// ErrUnsupportedVersion. A buffer starting with the legacy gzip wrapper is
// routed through the legacy upgrade chain and comes back as a container
// whose header reflects the wrapper's actual methods (JSON serialization,
// gzip compression) with the method lock unset, so a following save
// normalizes it to current defaults. Anything else is ErrUnrecognizedFile.
func LoadFromBytes(data []byte) (*RnoteFile, error) {
	if !hasMagic(data) {
		if legacy.HasGzipMagic(data) {
			return loadLegacy(data)
		}
		return nil, stageErr(StageParsePrelude, ErrUnrecognizedFile)
	}

	cursor := newByteCursor(data)
	prelude, err := decodePrelude(cursor)
	if err != nil {
		return nil, stageErr(StageParsePrelude, err)
	}

	if prelude.FileFormatVersion != CurrentFileFormatVersion {
		return nil, stageErr(StageParsePrelude, fmt.Errorf(
			"%w: file format version %d (producer %s)",
			ErrUnsupportedVersion, prelude.FileFormatVersion, prelude.ProducerVersion))
	}

	// The body offset comes from the prelude's explicit header length; the
	// header block is never reparsed to find it.
	headerBytes, err := cursor.take(prelude.HeaderSize)
	if err != nil {
		return nil, stageErr(StageParseHeader, err)
	}
	header, err := decodeHeader(headerBytes)
	if err != nil {
		return nil, stageErr(StageParseHeader, err)
	}

	body := make([]byte, len(cursor.rest()))
	copy(body, cursor.rest())

	return &RnoteFile{Header: header, Body: body}, nil
}

// ExtractSnapshot decompresses and deserializes the body back into an
// engine snapshot. This is the single point where a corrupt or foreign file
// surfaces as an error; the error names whether decompression or
// deserialization failed.
func (f *RnoteFile) ExtractSnapshot() (*snapshot.EngineSnapshot, error) {
	payload, err := f.Header.Compression.Decompress(int(f.Header.UncompressedSize), f.Body)
	if err != nil {
		return nil, stageErr(StageDecompress, err)
	}

	snap, err := f.Header.Serialization.Deserialize(payload)
	if err != nil {
		return nil, stageErr(StageDeserialize, err)
	}
	return snap, nil
}

// loadLegacy runs the legacy chain and repackages the upgraded document in
// a container. The legacy wrapper was gzip-compressed JSON, so the header
// reflects exactly that.
func loadLegacy(data []byte) (*RnoteFile, error) {
	newest, err := legacy.LoadFromBytes(data)
	if err != nil {
		return nil, stageErr(StageLegacyConvert, err)
	}
	snap, err := newest.ToEngineSnapshot()
	if err != nil {
		return nil, stageErr(StageLegacyConvert, err)
	}

	header := RnoteHeader{
		Serialization: method.SerializationJSON,
		Compression:   method.GzipCompression(),
		MethodLock:    false,
	}
	return New(header, snap)
}

func hasMagic(data []byte) bool {
	if len(data) < len(magicNumber) {
		return false
	}
	for i, b := range magicNumber {
		if data[i] != b {
			return false
		}
	}
	return true
}
