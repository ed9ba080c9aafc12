package rnotefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/blang/semver/v4"
)

// magicNumber identifies an rnote file in the binary format: "RNOTE-ΦΛ".
// Do not modify.
var magicNumber = [10]byte{0x52, 0x4e, 0x4f, 0x54, 0x45, 0x2d, 0xce, 0xa6, 0xce, 0x9b}

// CurrentFileFormatVersion is the file-format version this package writes.
const CurrentFileFormatVersion uint16 = 0

// ProducerVersion is the semantic version of this producer, written into
// every saved file's prelude.
var ProducerVersion = semver.MustParse("0.14.0")

// Prelude is the fixed, version-independent preamble that identifies a file
// and bootstraps parsing before any format-specific header is read.
//
// Layout, little-endian throughout:
//
//	magic number            10 bytes
//	file format version     u16
//	producer major          u64
//	producer minor          u64
//	producer patch          u64
//	prerelease length       u16, then that many UTF-8 bytes
//	build metadata length   u16, then that many UTF-8 bytes
//	header byte length      u32
type Prelude struct {
	FileFormatVersion uint16
	ProducerVersion   semver.Version
	HeaderSize        int
}

// Encode emits the byte representation of the prelude. Fails if the
// prerelease or build metadata string exceeds u16 range, or the header
// length exceeds u32 range.
func (p Prelude) Encode() ([]byte, error) {
	prerelease := prereleaseString(p.ProducerVersion)
	build := strings.Join(p.ProducerVersion.Build, ".")

	if len(prerelease) > math.MaxUint16 {
		return nil, fmt.Errorf("prerelease exceeds maximum size (%d bytes)", math.MaxUint16)
	}
	if len(build) > math.MaxUint16 {
		return nil, fmt.Errorf("build metadata exceeds maximum size (%d bytes)", math.MaxUint16)
	}
	if p.HeaderSize < 0 || uint64(p.HeaderSize) > math.MaxUint32 {
		return nil, fmt.Errorf("serialized header exceeds maximum size (%d bytes)", uint32(math.MaxUint32))
	}

	out := make([]byte, 0, len(magicNumber)+2+3*8+2+len(prerelease)+2+len(build)+4)
	out = append(out, magicNumber[:]...)
	out = binary.LittleEndian.AppendUint16(out, p.FileFormatVersion)
	out = binary.LittleEndian.AppendUint64(out, p.ProducerVersion.Major)
	out = binary.LittleEndian.AppendUint64(out, p.ProducerVersion.Minor)
	out = binary.LittleEndian.AppendUint64(out, p.ProducerVersion.Patch)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(prerelease)))
	out = append(out, prerelease...)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(build)))
	out = append(out, build...)
	out = binary.LittleEndian.AppendUint32(out, uint32(p.HeaderSize))
	return out, nil
}

// decodePrelude reads a prelude from the cursor. A magic number mismatch is
// ErrUnrecognizedFile; everything else wrong is a malformed structure. The
// file format version is returned as-is, deciding whether it is supported is
// the caller's job.
func decodePrelude(c *byteCursor) (Prelude, error) {
	var p Prelude

	magic, err := c.take(len(magicNumber))
	if err != nil {
		return p, fmt.Errorf("%w: buffer shorter than magic number", ErrUnrecognizedFile)
	}
	if !bytes.Equal(magic, magicNumber[:]) {
		return p, ErrUnrecognizedFile
	}

	if p.FileFormatVersion, err = c.takeU16(); err != nil {
		return p, err
	}

	if p.ProducerVersion.Major, err = c.takeU64(); err != nil {
		return p, err
	}
	if p.ProducerVersion.Minor, err = c.takeU64(); err != nil {
		return p, err
	}
	if p.ProducerVersion.Patch, err = c.takeU64(); err != nil {
		return p, err
	}

	prerelease, err := takeLengthPrefixedString(c)
	if err != nil {
		return p, err
	}
	if prerelease != "" {
		pre, err := parsePrerelease(prerelease)
		if err != nil {
			return p, fmt.Errorf("%w: invalid prerelease %q: %v", ErrMalformedStructure, prerelease, err)
		}
		p.ProducerVersion.Pre = pre
	}

	build, err := takeLengthPrefixedString(c)
	if err != nil {
		return p, err
	}
	if build != "" {
		p.ProducerVersion.Build = strings.Split(build, ".")
	}

	headerSize, err := c.takeU32()
	if err != nil {
		return p, err
	}
	p.HeaderSize = int(headerSize)

	return p, nil
}

func takeLengthPrefixedString(c *byteCursor) (string, error) {
	n, err := c.takeU16()
	if err != nil {
		return "", err
	}
	raw, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string field is not valid UTF-8", ErrMalformedStructure)
	}
	return string(raw), nil
}

func prereleaseString(v semver.Version) string {
	if len(v.Pre) == 0 {
		return ""
	}
	parts := make([]string, len(v.Pre))
	for i, pr := range v.Pre {
		parts[i] = pr.String()
	}
	return strings.Join(parts, ".")
}

func parsePrerelease(s string) ([]semver.PRVersion, error) {
	parts := strings.Split(s, ".")
	out := make([]semver.PRVersion, 0, len(parts))
	for _, part := range parts {
		pr, err := semver.NewPRVersion(part)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, nil
}
