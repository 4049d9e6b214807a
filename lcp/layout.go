package lcp

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-georaster/raster"
)

// Format constants
const (
	HeaderSize     = 7316
	MaxBands       = 10
	MaxClasses     = 100 // sentinel + 99 values
	MaxPath        = 256
	MaxDescription = 512
)

const (
	flagAbsent  = 20
	flagPresent = 21
)

// Fixed field offsets.
const (
	offCrownFlag   = 0
	offGroundFlag  = 4
	offLatitude    = 8
	offExtentCopy  = 12
	offStats       = 44
	offWidth       = 4164
	offHeight      = 4168
	offEast        = 4172
	offWest        = 4180
	offNorth       = 4188
	offSouth       = 4196
	offLinearUnit  = 4204
	offCellX       = 4208
	offCellY       = 4216
	offUnits       = 4224
	offPaths       = 4244
	offDescription = 6804

	statsStride = 4 + 4 + 4 + 4*MaxClasses
)

// HeaderLayout lists the bands present for one combination of the crown
// and ground fuel flags and where each band's fields live.
type HeaderLayout struct {
	CrownFuels  bool
	GroundFuels bool
	Quantities  []Quantity
}

// LayoutFor returns the layout of a flag combination.
func LayoutFor(crown, ground bool) HeaderLayout {
	q := []Quantity{Elevation, Slope, Aspect, FuelModel, CanopyCover}
	if crown {
		q = append(q, CanopyHeight, CanopyBaseHeight, CanopyBulkDensity)
	}
	if ground {
		q = append(q, Duff, CoarseWoody)
	}
	return HeaderLayout{CrownFuels: crown, GroundFuels: ground, Quantities: q}
}

// LayoutForBands returns the layout holding n bands.
func LayoutForBands(n int) (HeaderLayout, error) {
	switch n {
	case 5:
		return LayoutFor(false, false), nil
	case 7:
		return LayoutFor(false, true), nil
	case 8:
		return LayoutFor(true, false), nil
	case 10:
		return LayoutFor(true, true), nil
	}
	return HeaderLayout{}, fmt.Errorf("%w: %d bands, must be 5, 7, 8 or 10", raster.ErrConfig, n)
}

// BandCount returns the number of bands.
func (l HeaderLayout) BandCount() int { return len(l.Quantities) }

// StatsOffset returns the offset of the statistics block of a 0-based band.
func (l HeaderLayout) StatsOffset(band int) int64 {
	return offStats + statsStride*int64(l.Quantities[band])
}

// UnitOffset returns the offset of the unit code of a 0-based band.
func (l HeaderLayout) UnitOffset(band int) int64 {
	return offUnits + 2*int64(l.Quantities[band])
}

// PathOffset returns the offset of the source file slot of a 0-based band.
func (l HeaderLayout) PathOffset(band int) int64 {
	return offPaths + MaxPath*int64(l.Quantities[band])
}

// statsEnds are the cursor positions allowed after the statistics region.
var statsEnds = []int64{2104, 3340, offWidth}

// pathEnds are the cursor positions allowed after the source file region.
var pathEnds = []int64{5524, 6292, offDescription}

func (l HeaderLayout) statsEnd() int64 {
	return l.StatsOffset(l.BandCount()-1) + statsStride
}

func (l HeaderLayout) pathsEnd() int64 {
	return l.PathOffset(l.BandCount()-1) + MaxPath
}

func flagValue(present bool) int32 {
	if present {
		return flagPresent
	}
	return flagAbsent
}

func validFlag(v int32) bool {
	return v == flagAbsent || v == flagPresent
}

// assertCursor panics when an encoder region did not end where the layout
// says it must.
func assertCursor(region string, pos int64, allowed []int64) {
	if !slices.Contains(allowed, pos) {
		panic(fmt.Sprintf("lcp: cursor at %d after %s, want one of %v", pos, region, allowed))
	}
}
