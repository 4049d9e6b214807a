package lcp

import (
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
	"github.com/robert-malhotra/go-georaster/raster"
)

// LinearUnit is the unit of the extent and cell size.
type LinearUnit int32

// Linear units
const (
	Meters     LinearUnit = 0
	Feet       LinearUnit = 1
	Kilometers LinearUnit = 2
)

func (u LinearUnit) String() string {
	switch u {
	case Meters:
		return "Meters"
	case Feet:
		return "Feet"
	case Kilometers:
		return "Kilometers"
	default:
		return fmt.Sprintf("LinearUnit(%d)", int32(u))
	}
}

// Extent is the bounding box of the raster in its linear unit.
type Extent struct {
	West, East, North, South float64
}

// ClassSet lists the distinct values of a band.
type ClassSet struct {
	// TooMany is set when the band holds more distinct values than a
	// header can list.
	TooMany bool

	// Values holds the distinct values in ascending order.
	Values []int16
}

// Count returns the number of values, or -1 when TooMany is set.
func (c ClassSet) Count() int {
	if c.TooMany {
		return -1
	}
	return len(c.Values)
}

// Entries returns the values as stored: a zero sentinel followed by the
// values. It returns nil when TooMany is set.
func (c ClassSet) Entries() []int16 {
	if c.TooMany {
		return nil
	}
	return append([]int16{0}, c.Values...)
}

// BandDescriptor describes one band of a landscape file.
type BandDescriptor struct {
	Index    int // 1-based
	Quantity Quantity
	Label    string
	Unit     int16

	// Min and Max are nil when statistics were not computed.
	Min, Max *float64

	// Classes is nil when the band was not classified. The file format
	// stores an unclassified band with statistics the same way as one with
	// too many values, so Decode reports both as TooMany.
	Classes *ClassSet

	SourceFile string
}

// Header is the decoded fixed-size header of a landscape file.
type Header struct {
	CrownFuels  bool
	GroundFuels bool

	// Latitude is the integer latitude of the landscape, in degrees.
	Latitude int

	Width, Height int
	Extent        Extent
	CellX, CellY  float64
	LinearUnit    LinearUnit

	// Units holds the unit code of every quantity, present or not.
	Units [MaxBands]int16

	Description string
	Bands       []BandDescriptor
}

// Layout returns the layout matching the header flags.
func (h *Header) Layout() HeaderLayout {
	return LayoutFor(h.CrownFuels, h.GroundFuels)
}

// GeoTransform returns the north-up transform of the raster.
func (h *Header) GeoTransform() raster.GeoTransform {
	return raster.NorthUp(h.Extent.West, h.Extent.North, h.CellX, h.CellY)
}

// PixelSize is the size in bytes of one interleaved pixel.
func (h *Header) PixelSize() int {
	return len(h.Bands) * 2
}

// Decode parses a landscape header. Only the first HeaderSize bytes of buf
// are used.
func Decode(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes, need %d", raster.ErrFormat, len(buf), HeaderSize)
	}
	r := binpkg.NewBytesReader(buf[:HeaderSize])

	crown, err := r.ReadInt32()
	if err != nil {
		return nil, headerErr("crown fuel flag", err)
	}
	ground, err := r.ReadInt32()
	if err != nil {
		return nil, headerErr("ground fuel flag", err)
	}
	if !validFlag(crown) || !validFlag(ground) {
		return nil, fmt.Errorf("%w: fuel flags %d/%d, want 20 or 21", raster.ErrFormat, crown, ground)
	}
	lat, err := r.ReadInt32()
	if err != nil {
		return nil, headerErr("latitude", err)
	}

	h := &Header{
		CrownFuels:  crown == flagPresent,
		GroundFuels: ground == flagPresent,
		Latitude:    int(lat),
	}
	layout := h.Layout()

	if err := decodeRaster(r.At(offWidth), h, layout.BandCount()); err != nil {
		return nil, err
	}

	ur := r.At(offUnits)
	for q := range h.Units {
		if h.Units[q], err = ur.ReadInt16(); err != nil {
			return nil, headerErr("unit codes", err)
		}
	}

	desc, err := r.At(offDescription).ReadFixedString(MaxDescription)
	if err != nil {
		return nil, headerErr("description", err)
	}
	h.Description = decodeText(desc)

	h.Bands = make([]BandDescriptor, layout.BandCount())
	for i, q := range layout.Quantities {
		b := BandDescriptor{
			Index:    i + 1,
			Quantity: q,
			Label:    q.Label(),
			Unit:     h.Units[q],
		}
		if err := decodeStats(r.At(layout.StatsOffset(i)), &b); err != nil {
			return nil, err
		}
		path, err := r.At(layout.PathOffset(i)).ReadFixedString(MaxPath)
		if err != nil {
			return nil, headerErr("source file", err)
		}
		b.SourceFile = decodeText(path)
		h.Bands[i] = b
	}
	return h, nil
}

func decodeRaster(r *binpkg.Reader, h *Header, bands int) error {
	width, err := r.ReadInt32()
	if err != nil {
		return headerErr("width", err)
	}
	height, err := r.ReadInt32()
	if err != nil {
		return headerErr("height", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: raster size %dx%d", raster.ErrFormat, width, height)
	}
	if int64(width) > math.MaxInt32/int64(bands*2) {
		return fmt.Errorf("%w: width %d overflows the row size", raster.ErrFormat, width)
	}
	h.Width, h.Height = int(width), int(height)

	fields := []*float64{&h.Extent.East, &h.Extent.West, &h.Extent.North, &h.Extent.South}
	for _, f := range fields {
		if *f, err = r.ReadFloat64(); err != nil {
			return headerErr("extent", err)
		}
	}
	unit, err := r.ReadInt32()
	if err != nil {
		return headerErr("linear unit", err)
	}
	h.LinearUnit = LinearUnit(unit)
	if h.CellX, err = r.ReadFloat64(); err != nil {
		return headerErr("cell size", err)
	}
	if h.CellY, err = r.ReadFloat64(); err != nil {
		return headerErr("cell size", err)
	}
	return nil
}

// decodeStats reads min, max, class count and classes. An all-zero
// block means the statistics were never computed.
func decodeStats(r *binpkg.Reader, b *BandDescriptor) error {
	var v [3]int32
	for i := range v {
		var err error
		if v[i], err = r.ReadInt32(); err != nil {
			return headerErr("band statistics", err)
		}
	}
	lo, hi, count := v[0], v[1], v[2]
	if lo == 0 && hi == 0 && count == 0 {
		return nil
	}
	fmin, fmax := float64(lo), float64(hi)
	b.Min, b.Max = &fmin, &fmax

	switch {
	case count == -1:
		b.Classes = &ClassSet{TooMany: true}
	case count >= 0 && count < MaxClasses:
		r.Skip(4) // sentinel
		values := make([]int16, 0, count)
		for i := int32(0); i < count; i++ {
			e, err := r.ReadInt32()
			if err != nil {
				return headerErr("band classes", err)
			}
			values = append(values, int16(e))
		}
		b.Classes = &ClassSet{Values: values}
	}
	return nil
}

func headerErr(field string, err error) error {
	return fmt.Errorf("%w: reading %s: %w", raster.ErrFormat, field, err)
}

// Text fields are stored in Windows-1252.
func decodeText(b []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func encodeText(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}
