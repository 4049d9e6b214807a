package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
)

func TestForBand(t *testing.T) {
	l := ForBand(7316, 2, 5, 100, 50)
	assert.Equal(t, int64(7316+4), l.Offset)
	assert.Equal(t, int64(10), l.PixelOffset)
	assert.Equal(t, int64(1000), l.LineOffset)
	assert.Equal(t, int64(7316+4+3*1000), l.RowStart(3))
}

func TestPackAndReadRoundTrip(t *testing.T) {
	const header = 8
	const xsize, ysize = 3, 2

	packed := make([]byte, 2*xsize*SampleSize)
	data := make([]byte, header, header+ysize*len(packed))

	PackInt16Row([][]int16{{1, 2, 3}, {-1, -2, -3}}, xsize, packed)
	data = append(data, packed...)
	PackInt16Row([][]int16{{10, 20, 30}, {-10, -20, -30}}, xsize, packed)
	data = append(data, packed...)

	r := binpkg.NewBytesReader(data)
	dst := make([]int16, xsize)

	band1 := ForBand(header, 1, 2, xsize, ysize)
	require.NoError(t, band1.ReadInt16Row(r, 0, dst))
	assert.Equal(t, []int16{-1, -2, -3}, dst)

	band0 := ForBand(header, 0, 2, xsize, ysize)
	require.NoError(t, band0.ReadInt16Row(r, 1, dst))
	assert.Equal(t, []int16{10, 20, 30}, dst)

	assert.Error(t, band0.ReadInt16Row(r, 2, dst))
	assert.Error(t, band0.ReadInt16Row(r, 0, dst[:1]))
}

func TestReadTruncatedFile(t *testing.T) {
	l := ForBand(4, 0, 1, 4, 1)
	r := binpkg.NewBytesReader(make([]byte, 6))
	assert.Error(t, l.ReadInt16Row(r, 0, make([]int16, 4)))
}
