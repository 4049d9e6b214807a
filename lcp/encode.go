package lcp

import (
	"fmt"
	"math"
	"slices"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
	"github.com/robert-malhotra/go-georaster/raster"
)

// EncodeOptions selects the optional header regions to write.
type EncodeOptions struct {
	// Statistics writes per-band min and max.
	Statistics bool

	// Classify writes per-band class lists. It has no effect without
	// Statistics.
	Classify bool
}

// Encode builds the HeaderSize-byte header of h. Regions that are not
// written are left zero.
//
// The encoder panics if a region ends at an offset the layout does not
// allow; that is a defect in the encoder, not in h.
func Encode(h *Header, opts EncodeOptions) ([]byte, error) {
	if err := validateHeader(h); err != nil {
		return nil, err
	}
	layout := h.Layout()

	buf := binpkg.NewBuffer(HeaderSize)
	w := binpkg.NewWriter(buf, binpkg.DefaultConfig())

	if err := encodePreamble(w, h); err != nil {
		return nil, err
	}

	if opts.Statistics {
		if err := encodeStats(w, h, layout, opts.Classify); err != nil {
			return nil, err
		}
	} else {
		w.SeekTo(offWidth)
	}
	assertCursor("statistics", w.Pos(), statsEnds)
	w.SeekTo(offWidth)

	if err := encodeRaster(w, h); err != nil {
		return nil, err
	}
	assertCursor("unit codes", w.Pos(), []int64{offPaths})

	if err := encodePaths(w, h, layout); err != nil {
		return nil, err
	}
	assertCursor("source files", w.Pos(), pathEnds)
	w.SeekTo(offDescription)

	if err := w.WriteFixedString(encodeText(h.Description), MaxDescription); err != nil {
		return nil, encodeErr("description", err)
	}
	if w.Pos() > HeaderSize {
		panic(fmt.Sprintf("lcp: header overran to %d", w.Pos()))
	}
	return buf.Bytes()[:HeaderSize], nil
}

func validateHeader(h *Header) error {
	layout := h.Layout()
	if len(h.Bands) != layout.BandCount() {
		return fmt.Errorf("%w: %d band descriptors for a %d band layout", raster.ErrConfig, len(h.Bands), layout.BandCount())
	}
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: raster size %dx%d", raster.ErrConfig, h.Width, h.Height)
	}
	if h.Latitude < -90 || h.Latitude > 90 {
		return fmt.Errorf("%w: latitude %d outside [-90, 90]", raster.ErrConfig, h.Latitude)
	}
	for q, code := range h.Units {
		if !validUnit(Quantity(q), code) {
			return fmt.Errorf("%w: no %s unit with code %d", raster.ErrConfig, Quantity(q), code)
		}
	}
	for _, b := range h.Bands {
		if b.Classes != nil && !b.Classes.TooMany && len(b.Classes.Values) >= MaxClasses {
			return fmt.Errorf("%w: band %d lists %d classes", raster.ErrConfig, b.Index, len(b.Classes.Values))
		}
	}
	return nil
}

// validUnit reports whether code may be stored for q.
func validUnit(q Quantity, code int16) bool {
	if q == CoarseWoody {
		return code == 0 || code == 1
	}
	if code == q.DefaultUnit() {
		return true
	}
	_, ok := q.UnitName(code)
	return ok
}

func encodePreamble(w *binpkg.Writer, h *Header) error {
	ints := []int32{flagValue(h.CrownFuels), flagValue(h.GroundFuels), int32(h.Latitude)}
	for _, v := range ints {
		if err := w.WriteInt32(v); err != nil {
			return encodeErr("flags", err)
		}
	}
	if w.Pos() != offExtentCopy {
		panic("lcp: preamble misaligned")
	}
	return writeExtent(w, h.Extent)
}

func writeExtent(w *binpkg.Writer, e Extent) error {
	for _, v := range []float64{e.East, e.West, e.North, e.South} {
		if err := w.WriteFloat64(v); err != nil {
			return encodeErr("extent", err)
		}
	}
	return nil
}

func encodeStats(w *binpkg.Writer, h *Header, layout HeaderLayout, classify bool) error {
	for i, b := range h.Bands {
		off := layout.StatsOffset(i)
		if off < w.Pos() {
			panic(fmt.Sprintf("lcp: statistics of band %d behind cursor", i+1))
		}
		w.SeekTo(off)

		lo, hi := statValue(b.Min), statValue(b.Max)
		if err := w.WriteInt32(lo); err != nil {
			return encodeErr("statistics", err)
		}
		if err := w.WriteInt32(hi); err != nil {
			return encodeErr("statistics", err)
		}

		if !classify || b.Classes == nil || b.Classes.TooMany {
			if err := w.WriteInt32(-1); err != nil {
				return encodeErr("class count", err)
			}
			if err := w.WriteZeros(4 * MaxClasses); err != nil {
				return encodeErr("classes", err)
			}
			continue
		}
		if err := w.WriteInt32(int32(b.Classes.Count())); err != nil {
			return encodeErr("class count", err)
		}
		entries := make([]int32, MaxClasses)
		for j, v := range b.Classes.Entries() {
			entries[j] = int32(v)
		}
		for _, e := range entries {
			if err := w.WriteInt32(e); err != nil {
				return encodeErr("classes", err)
			}
		}
	}
	if w.Pos() != layout.statsEnd() {
		panic("lcp: statistics region misaligned")
	}
	return nil
}

// statValue truncates a statistic to int32. Missing values are zero.
func statValue(v *float64) int32 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	t := math.Trunc(*v)
	switch {
	case t < math.MinInt32:
		return math.MinInt32
	case t > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(t)
}

func encodeRaster(w *binpkg.Writer, h *Header) error {
	if err := w.WriteInt32(int32(h.Width)); err != nil {
		return encodeErr("width", err)
	}
	if err := w.WriteInt32(int32(h.Height)); err != nil {
		return encodeErr("height", err)
	}
	if err := writeExtent(w, h.Extent); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(h.LinearUnit)); err != nil {
		return encodeErr("linear unit", err)
	}
	if err := w.WriteFloat64(h.CellX); err != nil {
		return encodeErr("cell size", err)
	}
	if err := w.WriteFloat64(math.Abs(h.CellY)); err != nil {
		return encodeErr("cell size", err)
	}
	for _, u := range h.Units {
		if err := w.WriteInt16(u); err != nil {
			return encodeErr("unit codes", err)
		}
	}
	return nil
}

// encodePaths writes one slot per band, or skips the region when no band
// names a source file.
func encodePaths(w *binpkg.Writer, h *Header, layout HeaderLayout) error {
	hasPath := slices.ContainsFunc(h.Bands, func(b BandDescriptor) bool { return b.SourceFile != "" })
	if !hasPath {
		w.SeekTo(offDescription)
		return nil
	}
	for i, b := range h.Bands {
		off := layout.PathOffset(i)
		if off < w.Pos() {
			panic(fmt.Sprintf("lcp: source file of band %d behind cursor", i+1))
		}
		w.SeekTo(off)
		if err := w.WriteFixedString(encodeText(b.SourceFile), MaxPath); err != nil {
			return encodeErr("source file", err)
		}
	}
	if w.Pos() != layout.pathsEnd() {
		panic("lcp: source file region misaligned")
	}
	return nil
}

func encodeErr(field string, err error) error {
	return fmt.Errorf("%w: writing %s: %w", raster.ErrIO, field, err)
}
