package raster

import (
	"fmt"
	"math"
)

// ComputeMinMax scans every row of b and returns the smallest and largest
// valid sample. No-data samples and NaN are ignored.
func ComputeMinMax(b Band) (lo, hi float64, err error) {
	xsize, ysize := b.Size()
	noData, hasNoData := b.NoData()
	row := make([]float64, xsize)
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := 0; y < ysize; y++ {
		if err := b.ReadRow(y, row); err != nil {
			return 0, 0, err
		}
		for _, v := range row {
			if math.IsNaN(v) || (hasNoData && v == noData) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("band %d: %w", b.Number(), ErrNoValidPixels)
	}
	return lo, hi, nil
}
