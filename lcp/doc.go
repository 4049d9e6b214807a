// Package lcp reads and writes FARSITE landscape files.
//
// A landscape file is a 7316-byte little-endian header followed by Int16
// samples, pixel-interleaved: every pixel stores one value per band, in
// band order. The header flags select 5, 7, 8 or 10 bands.
//
//	ds, err := lcp.Open("landscape.lcp")
//	if err != nil {
//		return err
//	}
//	defer ds.Close()
//
// CreateCopy writes any raster.Dataset with a matching band count.
// Projections live in a sibling .prj file.
package lcp
