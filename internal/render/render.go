// Package render derives the presentation state of palette bands: the
// color table with its transparent entry, and the row order of interlaced
// images.
package render

import (
	"image/color"

	"github.com/robert-malhotra/go-georaster/raster"
)

// GraphicControlLabel identifies the extension record carrying the
// transparency flag.
const GraphicControlLabel = 0xF9

// ExtensionRecord is one extension block preceding an image.
type ExtensionRecord struct {
	Function byte
	Data     []byte
}

// TransparentIndex returns the palette index flagged transparent by the
// graphic control records. When several records qualify the last one wins.
func TransparentIndex(records []ExtensionRecord) (int, bool) {
	idx, ok := 0, false
	for _, r := range records {
		if r.Function != GraphicControlLabel || len(r.Data) < 4 {
			continue
		}
		if r.Data[0]&0x01 != 0 {
			idx, ok = int(r.Data[3]), true
		}
	}
	return idx, ok
}

// PaletteBand is the derived presentation of a palette band.
type PaletteBand struct {
	ColorTable raster.ColorTable

	// Transparent is the transparent palette index, or -1.
	Transparent int
}

// NoData returns the transparent index as a no-data value.
func (p PaletteBand) NoData() (float64, bool) {
	if p.Transparent < 0 {
		return 0, false
	}
	return float64(p.Transparent), true
}

// DerivePaletteBand builds the color table of a palette band. Every entry
// is opaque except the transparent one.
func DerivePaletteBand(palette color.Palette, records []ExtensionRecord) PaletteBand {
	transparent, ok := TransparentIndex(records)
	if !ok {
		transparent = -1
	}
	ct := make(raster.ColorTable, len(palette))
	for i, c := range palette {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		rgba.A = 255
		if i == transparent {
			rgba.A = 0
		}
		ct[i] = rgba
	}
	return PaletteBand{ColorTable: ct, Transparent: transparent}
}

// InterlaceMap maps a logical row to the row in storage order.
type InterlaceMap []int

// Physical returns the storage row of a logical row.
func (m InterlaceMap) Physical(row int) int {
	return m[row]
}

var (
	passStart  = [4]int{0, 4, 2, 1}
	passStride = [4]int{8, 8, 4, 2}
)

// DeriveInterlaceMap returns the map of a four-pass interlaced image of the
// given height.
func DeriveInterlaceMap(height int) InterlaceMap {
	m := make(InterlaceMap, height)
	line := 0
	for pass := range passStart {
		for j := passStart[pass]; j < height; j += passStride[pass] {
			m[j] = line
			line++
		}
	}
	return m
}
