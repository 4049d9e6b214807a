package layout

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
)

// SampleSize is the size of one Int16 sample.
const SampleSize = 2

// Interleaved locates the samples of one band in a pixel-interleaved file.
type Interleaved struct {
	Offset      int64
	PixelOffset int64
	LineOffset  int64
	XSize       int
	YSize       int
}

// ForBand returns the layout of band index (0-based) out of bands
// interleaved Int16 bands following a header of headerSize bytes.
func ForBand(headerSize int64, index, bands, xsize, ysize int) Interleaved {
	pixel := int64(bands) * SampleSize
	return Interleaved{
		Offset:      headerSize + int64(index)*SampleSize,
		PixelOffset: pixel,
		LineOffset:  pixel * int64(xsize),
		XSize:       xsize,
		YSize:       ysize,
	}
}

// RowStart returns the file offset of the first sample of a row.
func (l Interleaved) RowStart(row int) int64 {
	return l.Offset + int64(row)*l.LineOffset
}

// rowSpan is the number of bytes between the first and last sample of a
// row, inclusive.
func (l Interleaved) rowSpan() int {
	if l.XSize == 0 {
		return 0
	}
	return int(int64(l.XSize-1)*l.PixelOffset) + SampleSize
}

// ReadInt16Row reads one row of little-endian Int16 samples.
func (l Interleaved) ReadInt16Row(r *binpkg.Reader, row int, dst []int16) error {
	if row < 0 || row >= l.YSize {
		return fmt.Errorf("row %d outside [0,%d)", row, l.YSize)
	}
	if len(dst) < l.XSize {
		return fmt.Errorf("row buffer holds %d samples, need %d", len(dst), l.XSize)
	}
	raw, err := r.At(l.RowStart(row)).ReadBytes(l.rowSpan())
	if err != nil {
		return fmt.Errorf("reading row %d: %w", row, err)
	}
	for p := 0; p < l.XSize; p++ {
		off := int64(p) * l.PixelOffset
		dst[p] = int16(binary.LittleEndian.Uint16(raw[off:]))
	}
	return nil
}

// PackInt16Row interleaves one row of every band into out, which must hold
// len(rows)*xsize*2 bytes.
func PackInt16Row(rows [][]int16, xsize int, out []byte) {
	bands := len(rows)
	for b, row := range rows {
		for p := 0; p < xsize; p++ {
			off := (p*bands + b) * SampleSize
			binary.LittleEndian.PutUint16(out[off:], uint16(row[p]))
		}
	}
}
