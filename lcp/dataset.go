package lcp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
	"github.com/robert-malhotra/go-georaster/internal/layout"
	"github.com/robert-malhotra/go-georaster/internal/vfs"
	"github.com/robert-malhotra/go-georaster/raster"
)

// Dataset is an open landscape file.
type Dataset struct {
	path    string
	file    vfs.File
	reader  *binpkg.Reader
	header  *Header
	bands   []*Band
	md      raster.MetadataDomains
	srs     raster.SpatialRef
	prjPath string
	closed  bool
	logger  zerolog.Logger
}

// Open opens a landscape file, which may be gzip or zstd compressed.
func Open(path string, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)
	if cfg.access != raster.ReadOnly {
		return nil, fmt.Errorf("%w: landscape files cannot be opened for %s", raster.ErrNotSupported, cfg.access)
	}

	f, err := vfs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", raster.ErrIO, path, err)
	}

	head := make([]byte, HeaderSize)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("%w: reading header: %w", raster.ErrIO, err)
	}
	if !Identify(head[:n], path) {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a landscape file", raster.ErrFormat, path)
	}
	if n < HeaderSize {
		f.Close()
		return nil, fmt.Errorf("%w: file too short", raster.ErrFormat)
	}

	h, err := Decode(head)
	if err != nil {
		f.Close()
		return nil, err
	}

	ds := &Dataset{
		path:   path,
		file:   f,
		reader: binpkg.NewReader(f, binpkg.DefaultConfig()),
		header: h,
		md:     raster.MetadataDomains{},
		logger: cfg.logger,
	}
	ds.setMetadata()
	for i, desc := range h.Bands {
		ds.bands = append(ds.bands, &Band{
			ds:     ds,
			desc:   desc,
			layout: layout.ForBand(HeaderSize, i, len(h.Bands), h.Width, h.Height),
			md:     bandMetadata(desc),
		})
	}
	ds.loadProjection()
	return ds, nil
}

func (d *Dataset) setMetadata() {
	h := d.header
	d.md.Set(raster.DefaultDomain, "LATITUDE", strconv.Itoa(h.Latitude))
	switch h.LinearUnit {
	case Meters, Feet, Kilometers:
		d.md.Set(raster.DefaultDomain, "LINEAR_UNIT", h.LinearUnit.String())
	}
	d.md.Set(raster.DefaultDomain, "DESCRIPTION", h.Description)
}

func bandMetadata(b BandDescriptor) raster.Metadata {
	q := b.Quantity
	md := raster.Metadata{q.UnitKey(): strconv.Itoa(int(b.Unit))}
	if name, ok := q.UnitName(b.Unit); ok {
		md[q.info().unitNameKey] = name
	}
	prefix := q.Prefix()
	if b.Min != nil && b.Max != nil {
		md[prefix+"_MIN"] = strconv.Itoa(int(*b.Min))
		md[prefix+"_MAX"] = strconv.Itoa(int(*b.Max))
	}
	if b.Classes != nil {
		md[prefix+"_NUM_CLASSES"] = strconv.Itoa(b.Classes.Count())
	}
	if q == FuelModel {
		md["FUEL_MODEL_VALUES"] = fuelModelValues(b)
	}
	if b.SourceFile != "" {
		md[prefix+"_FILE"] = b.SourceFile
	}
	return md
}

// fuelModelValues lists the stored class entries within [min, max],
// separated by commas.
func fuelModelValues(b BandDescriptor) string {
	if b.Classes == nil || b.Classes.TooMany || b.Min == nil || b.Max == nil {
		return ""
	}
	var vals []string
	for _, v := range b.Classes.Entries() {
		if f := float64(v); f >= *b.Min && f <= *b.Max {
			vals = append(vals, strconv.Itoa(int(v)))
		}
	}
	return strings.Join(vals, ",")
}

// projectionPath returns the sibling .prj path of a landscape file.
func projectionPath(path, ext string) string {
	base := vfs.StripCompressionExt(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// loadProjection reads the sibling .prj file, if any.
func (d *Dataset) loadProjection() {
	for _, ext := range []string{".prj", ".PRJ"} {
		p := projectionPath(d.path, ext)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		wkt := strings.TrimSpace(string(data))
		if wkt == "" {
			return
		}
		d.srs = raster.WKT(wkt)
		d.prjPath = p
		d.logger.Debug().Str("path", p).Msg("loaded spatial reference")
		return
	}
}

// Header returns the decoded header.
func (d *Dataset) Header() *Header { return d.header }

func (d *Dataset) Size() (int, int) { return d.header.Width, d.header.Height }
func (d *Dataset) BandCount() int   { return len(d.bands) }

func (d *Dataset) Band(n int) (raster.Band, error) {
	if d.closed {
		return nil, raster.ErrClosed
	}
	if n < 1 || n > len(d.bands) {
		return nil, raster.BandIndexError(n, len(d.bands))
	}
	return d.bands[n-1], nil
}

func (d *Dataset) GeoTransform() (raster.GeoTransform, bool) {
	return d.header.GeoTransform(), true
}

func (d *Dataset) SpatialRef() raster.SpatialRef { return d.srs }

func (d *Dataset) Metadata(domain string) raster.Metadata {
	return d.md.Domain(domain)
}

// MetadataDomains lists the domains holding items.
func (d *Dataset) MetadataDomains() []string { return d.md.Names() }

// FileList returns the landscape file and its projection file, if loaded.
func (d *Dataset) FileList() []string {
	files := []string{d.path}
	if d.prjPath != "" {
		files = append(files, d.prjPath)
	}
	return files
}

// Close releases the file. Closing twice is a no-op.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

// Band is one Int16 band of a landscape file.
type Band struct {
	ds      *Dataset
	desc    BandDescriptor
	layout  layout.Interleaved
	md      raster.Metadata
	scratch []int16
}

// Descriptor returns the header entry of the band.
func (b *Band) Descriptor() BandDescriptor { return b.desc }

func (b *Band) Number() int                     { return b.desc.Index }
func (b *Band) Kind() raster.BandKind           { return raster.KindPlain }
func (b *Band) DataType() raster.DataType       { return raster.Int16 }
func (b *Band) Size() (int, int)                { return b.layout.XSize, b.layout.YSize }
func (b *Band) Description() string             { return b.desc.Label }
func (b *Band) NoData() (float64, bool)         { return 0, false }
func (b *Band) Metadata() raster.Metadata       { return b.md }
func (b *Band) ColorInterp() raster.ColorInterp { return raster.ColorUndefined }
func (b *Band) ColorTable() raster.ColorTable   { return nil }

// ReadRowInt16 reads one row of samples.
func (b *Band) ReadRowInt16(row int, dst []int16) error {
	if b.ds.closed {
		return raster.ErrClosed
	}
	if err := raster.CheckRow(b, row, len(dst)); err != nil {
		return err
	}
	if err := b.layout.ReadInt16Row(b.ds.reader, row, dst); err != nil {
		return fmt.Errorf("%w: band %d: %w", raster.ErrIO, b.desc.Index, err)
	}
	return nil
}

func (b *Band) ReadRow(row int, dst []float64) error {
	if err := raster.CheckRow(b, row, len(dst)); err != nil {
		return err
	}
	if cap(b.scratch) < b.layout.XSize {
		b.scratch = make([]int16, b.layout.XSize)
	}
	s := b.scratch[:b.layout.XSize]
	if err := b.ReadRowInt16(row, s); err != nil {
		return err
	}
	for i, v := range s {
		dst[i] = float64(v)
	}
	return nil
}
