package method

import "errors"

// Common sentinel errors
var (
	// ErrUnknownMethod reports an unrecognized method identifier string.
	ErrUnknownMethod = errors.New("unknown method identifier")
	// ErrLevelOutOfRange reports a compression level outside the codec's
	// valid range. The stored level is left untouched.
	ErrLevelOutOfRange = errors.New("compression level out of range")
	// ErrNoCompressionLevel is reported when a level update is requested on
	// a method that has no level. Callers treat it as a notice, not a
	// failure.
	ErrNoCompressionLevel = errors.New("compression method has no level to update")
)
