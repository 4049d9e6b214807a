// Package raster defines the dataset and band object model shared by the
// format drivers in this module.
//
// A driver opens a file into a [Dataset]; each dataset exposes one or more
// [Band] values. Bands come in a closed set of kinds, reported by
// [Band.Kind]:
//
//   - [KindPlain]: samples stored directly by the driver (landscape files,
//     in-memory bands).
//   - [KindPalette]: 8-bit indices into a [ColorTable] (GIF).
//   - [KindProxy]: a [ProxyBand] forwarding to a band owned by another
//     dataset, overriding only its identity and display properties.
//   - [KindComplex]: a [ComplexBand] combining an in-phase and a quadrature
//     band into complex samples.
//
// # Errors
//
// Drivers wrap one of the sentinel errors below so callers can classify a
// failure with errors.Is:
//
//   - [ErrFormat]: malformed or inconsistent file content
//   - [ErrConfig]: invalid or contradictory creation options
//   - [ErrIO]: failure of the underlying byte source or sink
//   - [ErrUserCancelled]: a [ProgressFunc] asked to stop
//
// Absence of optional data (no embedded metadata, no classification, no
// source file list) is never an error.
//
// # External collaborators
//
// Coordinate reference handling is reduced to the [SpatialRef] and
// [CoordinateTransformer] interfaces. [WKT] implements [SpatialRef] well
// enough to recover the linear unit of a projection file, and
// [GeographicPassthrough] transforms points that are already geographic.
package raster
