// Package mutate re-encodes a loaded document with different method
// choices. It enforces the method-lock policy: a locked file keeps its
// current serialization and compression methods across a mutate, no matter
// what was requested, unless the caller explicitly unlocks it in the same
// request.
package mutate

import (
	"github.com/flxzt/rnotefmt/pkg/method"
	"github.com/flxzt/rnotefmt/pkg/rnotefile"
)

// Request describes the desired changes. Nil method fields mean "keep the
// file's current choice".
type Request struct {
	Serialization *method.SerializationMethod
	Compression   *method.CompressionMethod
	// CompressionLevel adjusts the level of whichever compression method
	// ends up in effect.
	CompressionLevel *int
	// Lock pins the file to the methods this mutate leaves it with.
	Lock bool
	// Unlock releases an existing method lock, letting the requested
	// method changes through.
	Unlock bool
}

// Result reports what the mutate actually did.
type Result struct {
	File *rnotefile.RnoteFile
	// MethodsDenied is set when requested method changes were dropped
	// because the file is locked and the request did not unlock it.
	MethodsDenied bool
}

// Apply re-encodes the file per the request. The snapshot content is
// decoded with the file's recorded methods and re-encoded with the
// effective ones, so a pure lock/unlock request still round-trips the
// content through the same methods it came in with.
func Apply(file *rnotefile.RnoteFile, req Request) (Result, error) {
	snap, err := file.ExtractSnapshot()
	if err != nil {
		return Result{}, err
	}

	header := file.Header
	wantsMethodChange := req.Serialization != nil || req.Compression != nil || req.CompressionLevel != nil
	locked := header.MethodLock && !req.Unlock

	denied := false
	if wantsMethodChange {
		if locked {
			denied = true
		} else {
			if req.Serialization != nil {
				header.Serialization = *req.Serialization
			}
			if req.Compression != nil {
				header.Compression = *req.Compression
			}
			if req.CompressionLevel != nil {
				if err := header.Compression.UpdateCompressionLevel(*req.CompressionLevel); err != nil {
					return Result{}, err
				}
			}
		}
	}

	switch {
	case req.Unlock && !req.Lock:
		header.MethodLock = false
	case req.Lock:
		header.MethodLock = true
	}

	out, err := rnotefile.New(header, snap)
	if err != nil {
		return Result{}, err
	}
	return Result{File: out, MethodsDenied: denied}, nil
}
