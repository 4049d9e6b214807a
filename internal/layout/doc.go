// Package layout describes how raw pixel samples are arranged after a
// fixed-size header.
//
// Landscape files store every band pixel-interleaved: each row holds, for
// each pixel in turn, one sample of every band. A band is then fully
// described by an [Interleaved] layout giving the offset of its first
// sample, the distance between two samples of the same row, and the
// distance between two rows.
//
//	row r, pixel p  ->  Offset + r*LineOffset + p*PixelOffset
//
// [Interleaved.ReadInt16Row] reads one row of a band through a
// binary.Reader; [PackInt16Row] builds one interleaved output row from
// per-band rows for writing.
package layout
