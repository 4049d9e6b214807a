package raster

import "fmt"

// BandKind tags the closed set of band implementations.
type BandKind uint8

// Band kinds
const (
	KindPlain BandKind = iota
	KindPalette
	KindProxy
	KindComplex
)

func (k BandKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindPalette:
		return "palette"
	case KindProxy:
		return "proxy"
	case KindComplex:
		return "complex"
	default:
		return fmt.Sprintf("BandKind(%d)", uint8(k))
	}
}

// Band is one raster band of a dataset.
type Band interface {
	// Number returns the 1-based band index within its dataset.
	Number() int
	Kind() BandKind
	DataType() DataType
	Size() (xsize, ysize int)
	Description() string

	// ReadRow reads one full row into dst, converting samples to float64.
	// dst must hold at least xsize values.
	ReadRow(row int, dst []float64) error

	// NoData returns the no-data value, if the band has one.
	NoData() (float64, bool)
	Metadata() Metadata
	ColorInterp() ColorInterp

	// ColorTable returns the band palette, or nil.
	ColorTable() ColorTable
}

// Int16RowReader is implemented by bands that can deliver Int16 rows
// without a float64 round trip.
type Int16RowReader interface {
	ReadRowInt16(row int, dst []int16) error
}

// ReadRowInt16 reads one row of b as int16 samples.
// scratch is reused when it is large enough.
func ReadRowInt16(b Band, row int, dst []int16, scratch []float64) ([]float64, error) {
	if r, ok := b.(Int16RowReader); ok {
		return scratch, r.ReadRowInt16(row, dst)
	}
	xsize, _ := b.Size()
	if cap(scratch) < xsize {
		scratch = make([]float64, xsize)
	}
	scratch = scratch[:xsize]
	if err := b.ReadRow(row, scratch); err != nil {
		return scratch, err
	}
	for i, v := range scratch {
		dst[i] = ToInt16(v)
	}
	return scratch, nil
}

// checkRow validates a row request against a band size.
func checkRow(row, ysize, dstLen, xsize int) error {
	if row < 0 || row >= ysize {
		return fmt.Errorf("%w: row %d outside [0,%d)", ErrIO, row, ysize)
	}
	if dstLen < xsize {
		return fmt.Errorf("%w: row buffer holds %d samples, need %d", ErrIO, dstLen, xsize)
	}
	return nil
}

// CheckRow validates a row request for drivers implementing [Band].
func CheckRow(b Band, row, dstLen int) error {
	xsize, ysize := b.Size()
	return checkRow(row, ysize, dstLen, xsize)
}
