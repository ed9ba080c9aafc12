package rnotefile

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/flxzt/rnotefmt/pkg/method"
	"github.com/flxzt/rnotefmt/pkg/snapshot"
)

func sampleSnapshot() *snapshot.EngineSnapshot {
	snap := snapshot.Default()
	snap.StrokeComponents = []snapshot.StrokeComponent{
		{
			Key: 0,
			Stroke: snapshot.Stroke{BrushStroke: &snapshot.BrushStroke{
				Path: snapshot.PenPath{
					Start: snapshot.Element{Pos: [2]float64{12.5, 40.0}, Pressure: 0.5},
					Segments: []snapshot.Segment{
						{LineTo: &snapshot.LineTo{End: snapshot.Element{Pos: [2]float64{80.0, 95.5}, Pressure: 0.8}}},
						{QuadBezTo: &snapshot.QuadBezTo{
							Cp:  [2]float64{100.0, 100.0},
							End: snapshot.Element{Pos: [2]float64{120.0, 90.0}, Pressure: 0.6},
						}},
					},
				},
				Style: snapshot.BrushStyle{Width: 2.4, Color: 0x303030ff, Kind: "solid"},
			}},
		},
		{
			Key: 1,
			Stroke: snapshot.Stroke{TextStroke: &snapshot.TextStroke{
				Text:     "november meeting",
				Pos:      [2]float64{200.0, 40.0},
				FontSize: 14.0,
				Color:    0x000000ff,
			}},
		},
	}
	snap.ChronoComponents = []snapshot.ChronoComponent{
		{Key: 0, T: 1},
		{Key: 1, T: 2},
	}
	return snap
}

func allMethodCombinations() []RnoteHeader {
	serializations := []method.SerializationMethod{
		method.SerializationJSON,
		method.SerializationBincode,
		method.SerializationBitcode,
		method.SerializationPostcard,
	}
	compressions := []method.CompressionMethod{
		method.NoCompression(),
		method.GzipCompression(),
		method.GzipCompression().WithCompressionLevel(method.LevelVeryLow),
		method.ZstdCompression(),
		method.ZstdCompression().WithCompressionLevel(method.LevelVeryHigh),
	}
	var out []RnoteHeader
	for _, ser := range serializations {
		for _, comp := range compressions {
			out = append(out, RnoteHeader{Serialization: ser, Compression: comp})
		}
	}
	return out
}

func TestContainerRoundTripAllMethods(t *testing.T) {
	for _, snap := range []*snapshot.EngineSnapshot{sampleSnapshot(), snapshot.Default()} {
		for _, header := range allMethodCombinations() {
			name := fmt.Sprintf("%s_%s_%dstrokes",
				header.Serialization, header.Compression, snap.StrokeCount())
			t.Run(name, func(t *testing.T) {
				file, err := New(header, snap)
				if err != nil {
					t.Fatalf("building container: %v", err)
				}
				data, err := file.SaveAsBytes()
				if err != nil {
					t.Fatalf("saving container: %v", err)
				}

				loaded, err := LoadFromBytes(data)
				if err != nil {
					t.Fatalf("loading container: %v", err)
				}
				if loaded.Header.Serialization != header.Serialization {
					t.Errorf("serialization = %s, want %s", loaded.Header.Serialization, header.Serialization)
				}
				if loaded.Header.Compression != header.Compression {
					t.Errorf("compression = %+v, want %+v", loaded.Header.Compression, header.Compression)
				}

				round, err := loaded.ExtractSnapshot()
				if err != nil {
					t.Fatalf("extracting snapshot: %v", err)
				}
				if !snap.Equal(round) {
					t.Errorf("snapshot changed across the round trip")
				}
			})
		}
	}
}

func TestSaveAsBytesLayout(t *testing.T) {
	header := RnoteHeader{
		Serialization: method.SerializationPostcard,
		Compression:   method.CompressionMethod{Kind: method.CompressionZstd, Level: 3},
	}
	file, err := New(header, sampleSnapshot())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}
	data, err := file.SaveAsBytes()
	if err != nil {
		t.Fatalf("saving container: %v", err)
	}

	if !bytes.Equal(data[:10], magicNumber[:]) {
		t.Errorf("file does not start with the magic number: % x", data[:10])
	}
	if v := binary.LittleEndian.Uint16(data[10:12]); v != CurrentFileFormatVersion {
		t.Errorf("file format version = %d, want %d", v, CurrentFileFormatVersion)
	}

	loaded, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("loading container: %v", err)
	}
	if loaded.Header.Serialization != method.SerializationPostcard {
		t.Errorf("serialization = %s, want postcard", loaded.Header.Serialization)
	}
	if loaded.Header.Compression.Kind != method.CompressionZstd {
		t.Errorf("compression = %s, want zstd", loaded.Header.Compression.Kind)
	}
	if loaded.Header.UncompressedSize == 0 {
		t.Errorf("uncompressed size was not recorded")
	}
}

// The body offset is derived from the prelude's header length, not from
// reparsing the header. A header block with trailing padding must leave the
// body intact.
func TestHeaderSizeGovernsBodyOffset(t *testing.T) {
	header := RnoteHeader{
		Serialization: method.SerializationJSON,
		Compression:   method.NoCompression(),
	}
	file, err := New(header, sampleSnapshot())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}

	headerBytes, err := json.Marshal(file.Header)
	if err != nil {
		t.Fatalf("encoding header: %v", err)
	}
	headerBytes = append(headerBytes, []byte("   \n")...)

	prelude := Prelude{
		FileFormatVersion: CurrentFileFormatVersion,
		ProducerVersion:   ProducerVersion,
		HeaderSize:        len(headerBytes),
	}
	preludeBytes, err := prelude.Encode()
	if err != nil {
		t.Fatalf("encoding prelude: %v", err)
	}

	data := append(preludeBytes, headerBytes...)
	data = append(data, file.Body...)

	loaded, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("loading padded container: %v", err)
	}
	round, err := loaded.ExtractSnapshot()
	if err != nil {
		t.Fatalf("extracting snapshot: %v", err)
	}
	if round.StrokeCount() != 2 {
		t.Errorf("stroke count = %d, want 2", round.StrokeCount())
	}
}

func TestLoadFromBytesRejectsForeignBuffers(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"short":          {0x52, 0x4e},
		"text":           []byte("this is not an rnote file, promise"),
		"png magic":      {0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00},
		"almost magic":   {0x52, 0x4e, 0x4f, 0x54, 0x45, 0x2d, 0xce, 0xa6, 0xce, 0x00},
		"zstd framed":    {0x28, 0xb5, 0x2f, 0xfd, 0x00, 0x00},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromBytes(data)
			if !errors.Is(err, ErrUnrecognizedFile) {
				t.Errorf("err = %v, want ErrUnrecognizedFile", err)
			}
		})
	}
}

func TestLoadFromBytesRejectsFutureFormatVersion(t *testing.T) {
	file, err := New(DefaultHeader(), snapshot.Default())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}
	data, err := file.SaveAsBytes()
	if err != nil {
		t.Fatalf("saving container: %v", err)
	}
	binary.LittleEndian.PutUint16(data[10:12], CurrentFileFormatVersion+1)

	_, err = LoadFromBytes(data)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLoadFromBytesRejectsTruncatedContainer(t *testing.T) {
	file, err := New(DefaultHeader(), sampleSnapshot())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}
	data, err := file.SaveAsBytes()
	if err != nil {
		t.Fatalf("saving container: %v", err)
	}

	// Cut into the header block: the prelude promises more header bytes
	// than remain.
	_, err = LoadFromBytes(data[:50])
	if !errors.Is(err, ErrMalformedStructure) {
		t.Errorf("err = %v, want ErrMalformedStructure", err)
	}

	var fe *FileError
	if !errors.As(err, &fe) || fe.Stage != StageParseHeader {
		t.Errorf("stage = %v, want %s", err, StageParseHeader)
	}
}

func TestExtractSnapshotNamesFailingStage(t *testing.T) {
	file, err := New(RnoteHeader{
		Serialization: method.SerializationBitcode,
		Compression:   method.ZstdCompression(),
	}, sampleSnapshot())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}

	corrupt := &RnoteFile{Header: file.Header, Body: []byte("garbage that is not zstd")}
	_, err = corrupt.ExtractSnapshot()
	var fe *FileError
	if !errors.As(err, &fe) || fe.Stage != StageDecompress {
		t.Errorf("err = %v, want a %s stage error", err, StageDecompress)
	}

	// Valid compression around bytes that are not a bitcode payload.
	junk, err := method.ZstdCompression().Compress([]byte("not a snapshot"))
	if err != nil {
		t.Fatalf("compressing junk: %v", err)
	}
	corrupt = &RnoteFile{Header: file.Header, Body: junk}
	_, err = corrupt.ExtractSnapshot()
	if !errors.As(err, &fe) || fe.Stage != StageDeserialize {
		t.Errorf("err = %v, want a %s stage error", err, StageDeserialize)
	}
}

// A wrong recorded uncompressed size only mis-sizes buffers, it never
// corrupts the decoded payload.
func TestUncompressedSizeIsOnlyAHint(t *testing.T) {
	file, err := New(RnoteHeader{
		Serialization: method.SerializationJSON,
		Compression:   method.GzipCompression(),
	}, sampleSnapshot())
	if err != nil {
		t.Fatalf("building container: %v", err)
	}

	for _, size := range []uint64{0, 1, file.Header.UncompressedSize * 16} {
		tampered := &RnoteFile{Header: file.Header, Body: file.Body}
		tampered.Header.UncompressedSize = size
		snap, err := tampered.ExtractSnapshot()
		if err != nil {
			t.Fatalf("size hint %d: %v", size, err)
		}
		if snap.StrokeCount() != 2 {
			t.Errorf("size hint %d: stroke count = %d, want 2", size, snap.StrokeCount())
		}
	}
}

func TestLoadFromBytesRoutesLegacyFiles(t *testing.T) {
	legacyJSON := `{
		"version": "0.5.4",
		"data": {
			"sheet": {"width": 900.0, "height": 1200.0},
			"store_snapshot": {
				"stroke_components": [{"value": {"brushstroke": {
					"path": [{"line": {
						"start": {"pos": [0.0, 0.0], "pressure": 1.0},
						"end": {"pos": [10.0, 10.0], "pressure": 1.0}
					}}],
					"style": {"width": 2.0, "color": 255, "kind": "solid"}
				}}}],
				"chrono_components": [{"value": {"t": 1}}]
			}
		}
	}`
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(legacyJSON)); err != nil {
		t.Fatalf("compressing legacy file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}

	file, err := LoadFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("loading legacy file: %v", err)
	}

	// The header reflects what the wrapper actually was, unlocked so the
	// next save can normalize to current defaults.
	if file.Header.Serialization != method.SerializationJSON {
		t.Errorf("serialization = %s, want json", file.Header.Serialization)
	}
	if file.Header.Compression.Kind != method.CompressionGzip {
		t.Errorf("compression = %s, want gzip", file.Header.Compression.Kind)
	}
	if file.Header.MethodLock {
		t.Errorf("legacy file came back method-locked")
	}

	snap, err := file.ExtractSnapshot()
	if err != nil {
		t.Fatalf("extracting snapshot: %v", err)
	}
	if snap.StrokeCount() != 1 {
		t.Fatalf("stroke count = %d, want 1", snap.StrokeCount())
	}
	if snap.Document.Width != 900.0 {
		t.Errorf("document width = %v, want 900 (sheet key migrated)", snap.Document.Width)
	}

	// A legacy file re-saved and re-loaded is a normal current-format file.
	data, err := file.SaveAsBytes()
	if err != nil {
		t.Fatalf("re-saving: %v", err)
	}
	if !bytes.Equal(data[:10], magicNumber[:]) {
		t.Errorf("re-saved legacy file lacks the binary prelude")
	}
	reloaded, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("re-loading: %v", err)
	}
	round, err := reloaded.ExtractSnapshot()
	if err != nil {
		t.Fatalf("extracting re-loaded snapshot: %v", err)
	}
	if !snap.Equal(round) {
		t.Errorf("snapshot changed across legacy re-save")
	}
}
