package raster

import "image/color"

// ColorInterp describes how a band's values should be displayed.
type ColorInterp uint8

// Color interpretations
const (
	ColorUndefined ColorInterp = iota
	ColorGray
	ColorPalette
	ColorRed
	ColorGreen
	ColorBlue
	ColorAlpha
)

func (c ColorInterp) String() string {
	switch c {
	case ColorGray:
		return "Gray"
	case ColorPalette:
		return "Palette"
	case ColorRed:
		return "Red"
	case ColorGreen:
		return "Green"
	case ColorBlue:
		return "Blue"
	case ColorAlpha:
		return "Alpha"
	default:
		return "Undefined"
	}
}

// ColorTable maps palette indices to RGBA entries.
type ColorTable []color.RGBA

// Entry returns the color at index i.
func (ct ColorTable) Entry(i int) (color.RGBA, bool) {
	if i < 0 || i >= len(ct) {
		return color.RGBA{}, false
	}
	return ct[i], true
}
