package raster

import "errors"

// Error kinds
var (
	ErrFormat        = errors.New("malformed raster")
	ErrConfig        = errors.New("invalid creation options")
	ErrIO            = errors.New("raster I/O error")
	ErrUserCancelled = errors.New("operation cancelled by user")
	ErrClosed        = errors.New("dataset is closed")
	ErrNotSupported  = errors.New("unsupported operation")
	ErrBandIndex     = errors.New("band index out of range")
	ErrNoValidPixels = errors.New("no valid pixels")
)
