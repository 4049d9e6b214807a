package gif

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"image"
	"image/color"
	stdgif "image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-georaster/internal/packet"
	"github.com/robert-malhotra/go-georaster/raster"
)

var testPalette = color.Palette{
	color.RGBA{A: 0xFF},
	color.RGBA{R: 0xFF, A: 0xFF},
	color.RGBA{G: 0xFF, A: 0xFF},
	color.RGBA{B: 0xFF, A: 0xFF},
}

type gifParams struct {
	width, height int
	stored        []byte // pixels in storage order
	interlaced    bool
	background    byte
	transparent   int // -1 for none
	xmp           string
	localTable    bool
}

// buildGIF writes a GIF89a stream by hand so that interlacing and
// extension placement are under the test's control.
func buildGIF(t *testing.T, s gifParams) []byte {
	t.Helper()
	var b bytes.Buffer
	le := func(v uint16) { require.NoError(t, binary.Write(&b, binary.LittleEndian, v)) }
	table := func() {
		for _, c := range testPalette {
			r, g, bl, _ := c.RGBA()
			b.Write([]byte{byte(r >> 8), byte(g >> 8), byte(bl >> 8)})
		}
	}

	b.WriteString("GIF89a")
	le(uint16(s.width))
	le(uint16(s.height))
	if s.localTable {
		b.WriteByte(0x00)
	} else {
		b.WriteByte(0x80 | 0x01)
	}
	b.WriteByte(s.background)
	b.WriteByte(0)
	if !s.localTable {
		table()
	}

	if s.xmp != "" {
		b.Write(packet.XMPFraming.Signature)
		b.WriteString(s.xmp)
		b.WriteByte(0x01)
		for v := 0xFF; v >= 0; v-- {
			b.WriteByte(byte(v))
		}
		b.WriteByte(0x00)
	}
	if s.transparent >= 0 {
		b.Write([]byte{0x21, 0xF9, 0x04, 0x01, 0x00, 0x00, byte(s.transparent), 0x00})
	}

	b.WriteByte(0x2C)
	le(0)
	le(0)
	le(uint16(s.width))
	le(uint16(s.height))
	var packed byte
	if s.interlaced {
		packed |= 0x40
	}
	if s.localTable {
		packed |= 0x80 | 0x01
	}
	b.WriteByte(packed)
	if s.localTable {
		table()
	}

	b.WriteByte(2)
	var compressed bytes.Buffer
	lw := lzw.NewWriter(&compressed, lzw.LSB, 2)
	_, err := lw.Write(s.stored)
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	data := compressed.Bytes()
	for len(data) > 0 {
		n := min(len(data), 255)
		b.WriteByte(byte(n))
		b.Write(data[:n])
		data = data[n:]
	}
	b.WriteByte(0x00)
	b.WriteByte(0x3B)
	return b.Bytes()
}

func writeGIF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readRows(t *testing.T, ds *Dataset) [][]float64 {
	t.Helper()
	band, err := ds.Band(1)
	require.NoError(t, err)
	w, h := ds.Size()
	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		require.NoError(t, band.ReadRow(y, rows[y]))
	}
	return rows
}

func TestOpenStdlibEncoded(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 3, 2), testPalette)
	img.Pix = []byte{0, 1, 2, 3, 2, 1}
	var buf bytes.Buffer
	require.NoError(t, stdgif.Encode(&buf, img, nil))

	ds, err := Open(writeGIF(t, "std.gif", buf.Bytes()), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	w, h := ds.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, 1, ds.BandCount())
	assert.Equal(t, [][]float64{{0, 1, 2}, {3, 2, 1}}, readRows(t, ds))

	band, err := ds.Band(1)
	require.NoError(t, err)
	assert.Equal(t, raster.KindPalette, band.Kind())
	assert.Equal(t, raster.Byte, band.DataType())
	assert.Equal(t, raster.ColorPalette, band.ColorInterp())
	require.GreaterOrEqual(t, len(band.ColorTable()), 4)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, band.ColorTable()[1])
	_, ok := band.NoData()
	assert.False(t, ok)

	assert.Equal(t, "NO", ds.Metadata(raster.ImageStructureDomain)["INTERLACED"])
	_, hasGT := ds.GeoTransform()
	assert.False(t, hasGT)
}

func TestOpenInterlaced(t *testing.T) {
	// Storage order of 8 rows: 0, 4, 2, 6, 1, 3, 5, 7. Each row holds its
	// display index modulo 4.
	order := []int{0, 4, 2, 6, 1, 3, 5, 7}
	var stored []byte
	for _, row := range order {
		stored = append(stored, byte(row%4), byte(row%4))
	}
	data := buildGIF(t, gifParams{width: 2, height: 8, stored: stored, interlaced: true, background: 255, transparent: -1})

	ds, err := Open(writeGIF(t, "interlaced.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, "YES", ds.Metadata(raster.ImageStructureDomain)["INTERLACED"])
	rows := readRows(t, ds)
	for y, row := range rows {
		assert.Equal(t, []float64{float64(y % 4), float64(y % 4)}, row, "row %d", y)
	}
}

func TestOpenTransparencyAndBackground(t *testing.T) {
	data := buildGIF(t, gifParams{width: 2, height: 1, stored: []byte{2, 3}, background: 1, transparent: 2, localTable: true})

	ds, err := Open(writeGIF(t, "alpha.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.Band(1)
	require.NoError(t, err)
	nd, ok := band.NoData()
	require.True(t, ok)
	assert.Equal(t, 2.0, nd)
	ct := band.ColorTable()
	require.Len(t, ct, 4)
	assert.Equal(t, uint8(0), ct[2].A)
	assert.Equal(t, uint8(0xFF), ct[3].A)
	assert.Equal(t, "1", band.Metadata()["GIF_BACKGROUND"])
	assert.NotNil(t, ds.Image().ColorTable)
	assert.Nil(t, ds.Screen().GlobalColorTable)
}

func TestXMPLoadedLazily(t *testing.T) {
	xmp := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF/></x:xmpmeta>`
	data := buildGIF(t, gifParams{width: 2, height: 2, stored: []byte{0, 1, 2, 3}, background: 255, transparent: 1, xmp: xmp})

	ds, err := Open(writeGIF(t, "xmp.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, []string{raster.ImageStructureDomain, raster.XMPDomain}, ds.MetadataDomains())
	assert.False(t, ds.xmpLoaded)
	assert.Equal(t, xmp, ds.Metadata(raster.XMPDomain)[XMPKey])
	assert.True(t, ds.xmpLoaded)
	assert.Equal(t, []string{raster.ImageStructureDomain, raster.XMPDomain}, ds.MetadataDomains())

	got, ok, err := ds.XMP()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, xmp, string(got))

	// The application extension before the image must not disturb the
	// record parser.
	assert.Equal(t, [][]float64{{0, 1}, {2, 3}}, readRows(t, ds))
	nd, ok := ds.band.NoData()
	require.True(t, ok)
	assert.Equal(t, 1.0, nd)
}

func TestXMPAbsent(t *testing.T) {
	data := buildGIF(t, gifParams{width: 1, height: 1, stored: []byte{0}, background: 255, transparent: -1})
	ds, err := Open(writeGIF(t, "plain.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	assert.Contains(t, ds.MetadataDomains(), raster.XMPDomain)
	_, ok, err := ds.XMP()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ds.Metadata(raster.XMPDomain))
}

func TestWorldFile(t *testing.T) {
	data := buildGIF(t, gifParams{width: 1, height: 1, stored: []byte{0}, background: 255, transparent: -1})
	path := writeGIF(t, "geo.gif", data)
	wld := filepath.Join(filepath.Dir(path), "geo.gfw")
	require.NoError(t, os.WriteFile(wld, []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))

	ds, err := Open(path, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()

	gt, ok := ds.GeoTransform()
	require.True(t, ok)
	assert.Equal(t, raster.GeoTransform{100, 10, 0, 200, 0, -10}, gt)
	assert.Equal(t, []string{path, wld}, ds.FileList())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gif"))
	assert.ErrorIs(t, err, raster.ErrIO)

	_, err = Open(writeGIF(t, "text.gif", []byte("hello, world")))
	assert.ErrorIs(t, err, raster.ErrFormat)

	_, err = Open(writeGIF(t, "tiny.gif", []byte("GIF")))
	assert.ErrorIs(t, err, raster.ErrFormat)

	good := buildGIF(t, gifParams{width: 2, height: 2, stored: []byte{0, 1, 2, 3}, background: 255, transparent: -1})
	_, err = Open(writeGIF(t, "cut.gif", good[:20]))
	assert.ErrorIs(t, err, raster.ErrFormat)

	_, err = Open(writeGIF(t, "good.gif", good), WithAccess(raster.Update))
	assert.ErrorIs(t, err, raster.ErrNotSupported)

	noImage := append([]byte(nil), good[:13+12]...)
	noImage = append(noImage, 0x3B)
	_, err = Open(writeGIF(t, "empty.gif", noImage))
	assert.ErrorIs(t, err, raster.ErrFormat)
}

func TestShortImageData(t *testing.T) {
	// Claims 4x4 but only carries 4 pixels.
	data := buildGIF(t, gifParams{width: 2, height: 2, stored: []byte{0, 1, 2, 3}, background: 255, transparent: -1})
	binary.LittleEndian.PutUint16(data[6:], 4)
	binary.LittleEndian.PutUint16(data[8:], 4)
	desc := bytes.IndexByte(data[13+12:], 0x2C) + 13 + 12
	binary.LittleEndian.PutUint16(data[desc+5:], 4)
	binary.LittleEndian.PutUint16(data[desc+7:], 4)

	ds, err := Open(writeGIF(t, "short.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()
	band, err := ds.Band(1)
	require.NoError(t, err)
	assert.ErrorIs(t, band.ReadRow(0, make([]float64, 4)), raster.ErrFormat)
}

func TestClose(t *testing.T) {
	data := buildGIF(t, gifParams{width: 1, height: 1, stored: []byte{0}, background: 255, transparent: -1})
	ds, err := Open(writeGIF(t, "close.gif", data), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	band, err := ds.Band(1)
	require.NoError(t, err)

	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())
	assert.ErrorIs(t, band.ReadRow(0, make([]float64, 1)), raster.ErrClosed)
	_, _, err = ds.XMP()
	assert.ErrorIs(t, err, raster.ErrClosed)
	_, err = ds.Band(1)
	assert.ErrorIs(t, err, raster.ErrClosed)
}

func TestIdentify(t *testing.T) {
	assert.True(t, Identify([]byte("GIF87a....")))
	assert.True(t, Identify([]byte("GIF89a")))
	assert.False(t, Identify([]byte("GIF90a")))
	assert.False(t, Identify([]byte("GIF")))
}
