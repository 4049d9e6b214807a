package lcp

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-georaster/internal/classify"
	"github.com/robert-malhotra/go-georaster/internal/layout"
	"github.com/robert-malhotra/go-georaster/internal/vfs"
	"github.com/robert-malhotra/go-georaster/raster"
)

// ClassifyNoData is the sample value ignored when classifying bands.
const ClassifyNoData = -9999

// CreateCopy writes src as a landscape file at path and opens the result.
// src must have 5, 7, 8 or 10 bands, in landscape band order. A path
// ending in .gz or .zst is written compressed.
//
// Option errors are reported before path is created. When the progress
// callback cancels, the partial file is left on disk and the error wraps
// raster.ErrUserCancelled.
func CreateCopy(path string, src raster.Dataset, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)
	logger := cfg.logger

	h, ro, err := prepareHeader(src, cfg)
	if err != nil {
		return nil, err
	}
	if ro.stats {
		computeStatistics(src, h, ro.classify, logger)
	}

	buf, err := Encode(h, EncodeOptions{Statistics: ro.stats, Classify: ro.classify})
	if err != nil {
		return nil, err
	}

	if err := writeFile(path, src, buf, cfg.progress); err != nil {
		return nil, err
	}

	if srs := src.SpatialRef(); srs != nil && srs.WKT() != "" {
		prj := projectionPath(path, ".prj")
		if err := os.WriteFile(prj, []byte(srs.WKT()), 0o644); err != nil {
			logger.Error().Err(err).Str("path", prj).Msg("unable to write projection file")
		}
	}

	return Open(path, WithLogger(logger))
}

// prepareHeader validates the source and the options and fills every
// header field except the statistics.
func prepareHeader(src raster.Dataset, cfg *config) (*Header, resolvedOptions, error) {
	logger := cfg.logger
	n := src.BandCount()
	lay, err := LayoutForBands(n)
	if err != nil {
		return nil, resolvedOptions{}, err
	}

	first, err := src.Band(1)
	if err != nil {
		return nil, resolvedOptions{}, fmt.Errorf("%w: %w", raster.ErrConfig, err)
	}
	if dt := first.DataType(); dt != raster.Int16 {
		if cfg.strict {
			return nil, resolvedOptions{}, fmt.Errorf("%w: landscape files only hold Int16 samples, source is %s", raster.ErrConfig, dt)
		}
		logger.Warn().Stringer("type", dt).Msg("converting samples to Int16")
	}

	ro, err := cfg.options.resolve(lay, logger)
	if err != nil {
		return nil, resolvedOptions{}, err
	}

	xsize, ysize := src.Size()
	gt, ok := src.GeoTransform()
	if !ok {
		gt = raster.GeoTransform{0, 1, 0, 0, 0, 1}
	}

	lat, err := latitude(src, gt, ro, cfg.transformer)
	if err != nil {
		return nil, resolvedOptions{}, err
	}
	unit, err := linearUnit(src.SpatialRef(), ro, cfg.strict, logger)
	if err != nil {
		return nil, resolvedOptions{}, err
	}

	h := &Header{
		CrownFuels:  lay.CrownFuels,
		GroundFuels: lay.GroundFuels,
		Latitude:    lat,
		Width:       xsize,
		Height:      ysize,
		Extent: Extent{
			West:  gt[0],
			East:  gt[0] + gt[1]*float64(xsize),
			North: gt[3],
			South: gt[3] + gt[5]*float64(ysize),
		},
		CellX:       gt[1],
		CellY:       math.Abs(gt[5]),
		LinearUnit:  unit,
		Units:       ro.units,
		Description: ro.description,
	}

	mainFile := ""
	if files := src.FileList(); len(files) > 0 {
		mainFile = files[0]
	}
	for i, q := range lay.Quantities {
		b, err := src.Band(i + 1)
		if err != nil {
			return nil, resolvedOptions{}, fmt.Errorf("%w: %w", raster.ErrConfig, err)
		}
		source := b.Metadata()[q.Prefix()+"_FILE"]
		if source == "" {
			source = mainFile
		}
		h.Bands = append(h.Bands, BandDescriptor{
			Index:      i + 1,
			Quantity:   q,
			Label:      q.Label(),
			Unit:       ro.units[q],
			SourceFile: source,
		})
	}
	return h, ro, nil
}

// latitude returns the explicit latitude, or derives it from the raster
// center. A latitude that cannot be derived is fatal in every mode.
func latitude(src raster.Dataset, gt raster.GeoTransform, ro resolvedOptions, ct raster.CoordinateTransformer) (int, error) {
	if ro.latitude != nil {
		return *ro.latitude, nil
	}
	srs := src.SpatialRef()
	if srs == nil {
		return 0, fmt.Errorf("%w: could not calculate latitude from spatial reference and LATITUDE was not set", raster.ErrConfig)
	}
	xsize, ysize := src.Size()
	x, y := gt.Center(xsize, ysize)
	_, lat, err := ct.ToGeographic(srs, x, y)
	if err != nil {
		return 0, fmt.Errorf("%w: could not calculate latitude and LATITUDE was not set: %w", raster.ErrConfig, err)
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, fmt.Errorf("%w: derived latitude %g outside [-90, 90]", raster.ErrConfig, lat)
	}
	return int(math.Floor(lat + 0.5)), nil
}

// linearUnit resolves the linear unit, reading it from srs when asked to.
func linearUnit(srs raster.SpatialRef, ro resolvedOptions, strict bool, logger zerolog.Logger) (LinearUnit, error) {
	if !ro.linearFromSRS {
		return ro.linearUnit, nil
	}
	var (
		name  string
		scale float64
		ok    bool
	)
	if srs != nil {
		name, scale, ok = srs.LinearUnit()
	}
	if !ok {
		if strict {
			return 0, fmt.Errorf("%w: could not parse linear unit from spatial reference and LINEAR_UNIT was not set", raster.ErrConfig)
		}
		logger.Warn().Msg("could not parse linear unit from spatial reference and LINEAR_UNIT was not set, defaulting to meters")
		return Meters, nil
	}

	logger.Debug().Str("unit", name).Msg("setting linear unit from spatial reference")
	unit := Meters
	switch n := strings.ToLower(name); {
	case n == "meter" || n == "metre":
		unit = Meters
	case n == "feet" || n == "foot":
		unit = Feet
	case strings.HasPrefix(n, "kilomet"):
		unit = Kilometers
	}
	if scale != 1 {
		if strict {
			return 0, fmt.Errorf("%w: unit scale is %g (!=1.0), which is not supported", raster.ErrConfig, scale)
		}
		logger.Warn().Float64("scale", scale).Msg("unit scale is not 1.0, ignoring")
	}
	return unit, nil
}

// computeStatistics fills min, max and classes of every band. Failures
// are logged and leave zero statistics.
func computeStatistics(src raster.Dataset, h *Header, classifyData bool, logger zerolog.Logger) {
	for i := range h.Bands {
		desc := &h.Bands[i]
		b, err := src.Band(desc.Index)
		if err != nil {
			logger.Warn().Err(err).Int("band", desc.Index).Msg("failed to properly calculate statistics")
			zero := 0.0
			desc.Min, desc.Max = &zero, &zero
			continue
		}
		lo, hi, err := raster.ComputeMinMax(b)
		if err != nil {
			logger.Warn().Err(err).Int("band", desc.Index).Msg("failed to properly calculate statistics")
			lo, hi = 0, 0
		}
		desc.Min, desc.Max = &lo, &hi

		if !classifyData {
			continue
		}
		res, err := classify.Classify(classify.FromBand(b), ClassifyNoData)
		if err != nil {
			logger.Warn().Err(err).Int("band", desc.Index).Msg("failed to classify band data")
			continue
		}
		if res.TooMany {
			logger.Debug().Int("band", desc.Index).Msgf("found more than %d unique values, not classifying", classify.MaxDistinct)
		}
		desc.Classes = &ClassSet{TooMany: res.TooMany, Values: res.Values}
	}
}

// writeFile writes the header and the interleaved pixel rows.
func writeFile(path string, src raster.Dataset, header []byte, progress raster.ProgressFunc) (err error) {
	out, err := vfs.Create(path)
	if err != nil {
		return fmt.Errorf("%w: unable to create %s: %w", raster.ErrIO, path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", raster.ErrIO, path, cerr)
		}
	}()

	if _, err := out.Write(header); err != nil {
		return fmt.Errorf("%w: writing header: %w", raster.ErrIO, err)
	}
	if !progress(0, "") {
		return raster.ErrUserCancelled
	}

	xsize, ysize := src.Size()
	bands := make([]raster.Band, src.BandCount())
	for i := range bands {
		if bands[i], err = src.Band(i + 1); err != nil {
			return fmt.Errorf("%w: %w", raster.ErrIO, err)
		}
	}
	rows := make([][]int16, len(bands))
	for i := range rows {
		rows[i] = make([]int16, xsize)
	}
	packed := make([]byte, len(bands)*xsize*layout.SampleSize)
	var scratch []float64

	for y := 0; y < ysize; y++ {
		for i, b := range bands {
			if scratch, err = raster.ReadRowInt16(b, y, rows[i], scratch); err != nil {
				return fmt.Errorf("%w: reading band %d row %d: %w", raster.ErrIO, i+1, y, err)
			}
		}
		layout.PackInt16Row(rows, xsize, packed)
		if _, err := out.Write(packed); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", raster.ErrIO, y, err)
		}
		if !progress(float64(y+1)/float64(ysize), "") {
			return raster.ErrUserCancelled
		}
	}
	if !progress(1, "") {
		return raster.ErrUserCancelled
	}
	return nil
}
