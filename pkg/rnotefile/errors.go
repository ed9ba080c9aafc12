package rnotefile

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrUnrecognizedFile means the buffer is not an rnote file at all:
	// neither the binary prelude magic nor the legacy gzip wrapper is
	// present at the start.
	ErrUnrecognizedFile = errors.New("unrecognized file format")
	// ErrUnsupportedVersion means the file identified itself as an rnote
	// file but no known format version matches.
	ErrUnsupportedVersion = errors.New("unsupported file version")
	// ErrMalformedStructure means a truncated buffer, invalid UTF-8 or an
	// invalid field value was hit while parsing the prelude or header.
	ErrMalformedStructure = errors.New("malformed file structure")
)

// Parsing and conversion stages, used to name which part of a load or save
// failed.
const (
	StageParsePrelude  = "parse prelude"
	StageParseHeader   = "parse header"
	StageSerialize     = "serialize"
	StageDeserialize   = "deserialize"
	StageCompress      = "compress"
	StageDecompress    = "decompress"
	StageLegacyConvert = "legacy convert"
	StageWriteFile     = "write file"
)

// FileError wraps a failure with the stage it occurred in, so callers can
// tell a prelude parse failure from a decompression failure without string
// matching.
type FileError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FileError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &FileError{Stage: stage, Err: err}
}
