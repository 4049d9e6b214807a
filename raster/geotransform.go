package raster

// GeoTransform is an affine transform from pixel/line space to georeferenced
// space:
//
//	Xgeo = gt[0] + P*gt[1] + L*gt[2]
//	Ygeo = gt[3] + P*gt[4] + L*gt[5]
type GeoTransform [6]float64

// NorthUp builds the transform of a north-up raster whose top-left corner is
// (originX, originY). cellY is the positive cell height.
func NorthUp(originX, originY, cellX, cellY float64) GeoTransform {
	return GeoTransform{originX, cellX, 0, originY, 0, -cellY}
}

// Apply maps a pixel/line location to georeferenced coordinates.
func (gt GeoTransform) Apply(pixel, line float64) (x, y float64) {
	x = gt[0] + pixel*gt[1] + line*gt[2]
	y = gt[3] + pixel*gt[4] + line*gt[5]
	return x, y
}

// Center returns the georeferenced centre of a raster of the given size.
func (gt GeoTransform) Center(xsize, ysize int) (x, y float64) {
	return gt.Apply(float64(xsize)/2, float64(ysize)/2)
}
