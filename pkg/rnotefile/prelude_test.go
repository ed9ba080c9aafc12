package rnotefile

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/blang/semver/v4"
)

func TestPreludeEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		version string
	}{
		{"plain release", "0.14.0"},
		{"prerelease", "1.2.3-alpha.1"},
		{"build metadata", "0.9.2+20231104"},
		{"prerelease and build", "2.0.0-rc.2+linux.x86"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Prelude{
				FileFormatVersion: 3,
				ProducerVersion:   semver.MustParse(tc.version),
				HeaderSize:        412,
			}
			data, err := in.Encode()
			if err != nil {
				t.Fatalf("encoding prelude: %v", err)
			}

			out, err := decodePrelude(newByteCursor(data))
			if err != nil {
				t.Fatalf("decoding prelude: %v", err)
			}
			if out.FileFormatVersion != 3 || out.HeaderSize != 412 {
				t.Errorf("decoded %+v, want version 3, header size 412", out)
			}
			if !out.ProducerVersion.Equals(in.ProducerVersion) {
				t.Errorf("producer version = %s, want %s", out.ProducerVersion, in.ProducerVersion)
			}
		})
	}
}

func TestPreludeLayout(t *testing.T) {
	p := Prelude{
		FileFormatVersion: 1,
		ProducerVersion:   semver.MustParse("0.14.0"),
		HeaderSize:        100,
	}
	data, err := p.Encode()
	if err != nil {
		t.Fatalf("encoding prelude: %v", err)
	}

	// magic(10) + version(2) + major/minor/patch(24) + two empty
	// length-prefixed strings(4) + header length(4)
	if len(data) != 44 {
		t.Fatalf("prelude length = %d, want 44", len(data))
	}
	if string(data[:6]) != "RNOTE-" {
		t.Errorf("magic prefix = %q, want RNOTE-", data[:6])
	}
	if v := binary.LittleEndian.Uint16(data[10:12]); v != 1 {
		t.Errorf("file format version bytes = %d, want 1 (little-endian at offset 10)", v)
	}
	if major := binary.LittleEndian.Uint64(data[12:20]); major != 0 {
		t.Errorf("major = %d, want 0", major)
	}
	if minor := binary.LittleEndian.Uint64(data[20:28]); minor != 14 {
		t.Errorf("minor = %d, want 14", minor)
	}
	if hs := binary.LittleEndian.Uint32(data[len(data)-4:]); hs != 100 {
		t.Errorf("trailing header length = %d, want 100", hs)
	}
}

func TestPreludeEncodeRejectsOversizedFields(t *testing.T) {
	long := semver.MustParse("1.0.0")
	long.Build = []string{strings.Repeat("a", 70000)}
	if _, err := (Prelude{ProducerVersion: long, HeaderSize: 1}).Encode(); err == nil {
		t.Errorf("expected an error for build metadata beyond u16 range")
	}

	pre := semver.MustParse("1.0.0-" + strings.Repeat("a", 70000))
	if _, err := (Prelude{ProducerVersion: pre, HeaderSize: 1}).Encode(); err == nil {
		t.Errorf("expected an error for a prerelease beyond u16 range")
	}
}

func TestDecodePreludeRejectsBadInput(t *testing.T) {
	valid, err := (Prelude{
		FileFormatVersion: 0,
		ProducerVersion:   semver.MustParse("0.14.0"),
		HeaderSize:        10,
	}).Encode()
	if err != nil {
		t.Fatalf("encoding prelude: %v", err)
	}

	t.Run("empty buffer", func(t *testing.T) {
		_, err := decodePrelude(newByteCursor(nil))
		if !errors.Is(err, ErrUnrecognizedFile) {
			t.Errorf("err = %v, want ErrUnrecognizedFile", err)
		}
	})
	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		bad[4] ^= 0xff
		_, err := decodePrelude(newByteCursor(bad))
		if !errors.Is(err, ErrUnrecognizedFile) {
			t.Errorf("err = %v, want ErrUnrecognizedFile", err)
		}
	})
	t.Run("truncated after magic", func(t *testing.T) {
		_, err := decodePrelude(newByteCursor(valid[:11]))
		if !errors.Is(err, ErrMalformedStructure) {
			t.Errorf("err = %v, want ErrMalformedStructure", err)
		}
	})
	t.Run("truncated string field", func(t *testing.T) {
		// Claim a 200-byte prerelease with nothing behind it.
		bad := append([]byte(nil), valid[:36]...)
		bad = binary.LittleEndian.AppendUint16(bad, 200)
		_, err := decodePrelude(newByteCursor(bad))
		if !errors.Is(err, ErrMalformedStructure) {
			t.Errorf("err = %v, want ErrMalformedStructure", err)
		}
	})
	t.Run("invalid utf8 in prerelease", func(t *testing.T) {
		bad := append([]byte(nil), valid[:36]...)
		bad = binary.LittleEndian.AppendUint16(bad, 2)
		bad = append(bad, 0xff, 0xfe)
		bad = binary.LittleEndian.AppendUint16(bad, 0)
		bad = binary.LittleEndian.AppendUint32(bad, 10)
		_, err := decodePrelude(newByteCursor(bad))
		if !errors.Is(err, ErrMalformedStructure) {
			t.Errorf("err = %v, want ErrMalformedStructure", err)
		}
	})

	// An unknown file format version is not the prelude's concern.
	t.Run("future version decodes", func(t *testing.T) {
		future := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint16(future[10:12], 9999)
		p, err := decodePrelude(newByteCursor(future))
		if err != nil {
			t.Fatalf("decoding future version: %v", err)
		}
		if p.FileFormatVersion != 9999 {
			t.Errorf("version = %d, want 9999", p.FileFormatVersion)
		}
	})
}
