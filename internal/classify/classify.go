// Package classify enumerates the distinct values of small categorical
// Int16 bands.
//
// It is not a histogram: it only answers whether the set of distinct valid
// values is small enough to list, and lists it in ascending order when it
// is. Scanning stops as soon as the cap is exceeded.
package classify

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-georaster/raster"
)

// MaxDistinct is the largest number of distinct values that is enumerated.
const MaxDistinct = 99

// flagOffset maps [-32768, 32767] onto [0, 65535].
const flagOffset = -math.MinInt16

// RowSource delivers rows of Int16 samples.
type RowSource interface {
	Size() (xsize, ysize int)
	ReadRowInt16(row int, dst []int16) error
}

// Result is the outcome of a classification.
type Result struct {
	// Values holds the distinct values in ascending order. It is nil when
	// TooMany is set.
	Values []int16

	// TooMany is set when more than MaxDistinct distinct values were seen.
	TooMany bool
}

// Classify scans src row by row, ignoring samples equal to noData.
// Read failures are wrapped with raster.ErrIO.
func Classify(src RowSource, noData int16) (Result, error) {
	xsize, ysize := src.Size()
	row := make([]int16, xsize)
	flags := make([]bool, math.MaxUint16+1)
	found := 0

	for y := 0; y < ysize; y++ {
		if err := src.ReadRowInt16(y, row); err != nil {
			return Result{}, fmt.Errorf("%w: classifying row %d: %w", raster.ErrIO, y, err)
		}
		for _, v := range row {
			if v == noData {
				continue
			}
			idx := int(v) + flagOffset
			if flags[idx] {
				continue
			}
			if found == MaxDistinct {
				return Result{TooMany: true}, nil
			}
			flags[idx] = true
			found++
		}
	}

	values := make([]int16, 0, found)
	for idx, set := range flags {
		if set {
			values = append(values, int16(idx-flagOffset))
		}
	}
	return Result{Values: values}, nil
}

// bandSource adapts a raster.Band to RowSource.
type bandSource struct {
	band    raster.Band
	scratch []float64
}

// FromBand reads Int16 rows from any band, converting samples as needed.
func FromBand(b raster.Band) RowSource {
	return &bandSource{band: b}
}

func (s *bandSource) Size() (int, int) {
	return s.band.Size()
}

func (s *bandSource) ReadRowInt16(row int, dst []int16) error {
	var err error
	s.scratch, err = raster.ReadRowInt16(s.band, row, dst, s.scratch)
	return err
}
