package raster

import "fmt"

// ProgressFunc reports the completed fraction of a long operation, in [0,1].
// Returning false asks the operation to stop.
type ProgressFunc func(complete float64, message string) bool

// NoProgress is a ProgressFunc that never cancels.
func NoProgress(float64, string) bool { return true }

// Dataset is an open raster with one or more bands.
// A dataset is not safe for concurrent use.
type Dataset interface {
	Size() (xsize, ysize int)
	BandCount() int

	// Band returns the band with the given 1-based index.
	Band(n int) (Band, error)

	// GeoTransform returns the affine georeferencing, if known.
	GeoTransform() (GeoTransform, bool)

	// SpatialRef returns the coordinate reference system, or nil.
	SpatialRef() SpatialRef

	// Metadata returns the items of one domain, or nil.
	Metadata(domain string) Metadata

	// FileList returns the files making up the dataset, main file first.
	FileList() []string

	Close() error
}

// BandIndexError builds the error returned for an invalid band index.
func BandIndexError(n, count int) error {
	return fmt.Errorf("%w: band %d of %d", ErrBandIndex, n, count)
}

// Access is the mode a dataset is opened with.
type Access uint8

// Access modes
const (
	ReadOnly Access = iota
	Update
)

func (a Access) String() string {
	if a == Update {
		return "update"
	}
	return "read-only"
}
