package bandhist

import "errors"

// Failure kinds. Errors returned by this package wrap exactly one of these
// (where a kind applies), so callers can classify with errors.Is.
var (
	// ErrFileNotFound means the input file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrMalformedMetadata means a required group, dataset, attribute or
	// Map_Info field is missing or unparsable.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// ErrBandOutOfRange means the requested 1-based band is outside the cube.
	ErrBandOutOfRange = errors.New("band out of range")
	// ErrWriteFailed means the histogram image could not be written.
	ErrWriteFailed = errors.New("write failed")
)
