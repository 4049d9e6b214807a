// Package gif reads GIF images as single-band palette rasters.
//
// Only the first image of a stream is exposed. Rows are returned in
// display order for interlaced images. Georeferencing comes from a world
// file (.gfw, .gifw or .wld) next to the image, and an embedded XMP packet
// is available through the raster.XMPDomain metadata domain.
package gif
