package gif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
	"github.com/robert-malhotra/go-georaster/internal/packet"
	"github.com/robert-malhotra/go-georaster/internal/render"
	"github.com/robert-malhotra/go-georaster/internal/vfs"
	"github.com/robert-malhotra/go-georaster/raster"
)

// Extension is the file extension of GIF files, without the dot.
const Extension = "gif"

// XMPKey is the item holding the XMP packet in the raster.XMPDomain
// metadata domain.
const XMPKey = "XMP"

// Identify reports whether head starts with a GIF signature.
func Identify(head []byte) bool {
	return len(head) >= 6 && (bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a")))
}

// Option configures Open.
type Option func(*config)

type config struct {
	access raster.Access
	logger zerolog.Logger
}

// WithAccess sets the access mode. Only raster.ReadOnly is supported.
func WithAccess(a raster.Access) Option {
	return func(c *config) { c.access = a }
}

// WithLogger sets the logger of the dataset.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Dataset is an open GIF file. Only the first image is exposed, as a
// single palette band.
type Dataset struct {
	path      string
	file      vfs.File
	screen    *ScreenDescriptor
	image     *ImageRecord
	band      *Band
	md        raster.MetadataDomains
	gt        raster.GeoTransform
	hasGT     bool
	worldFile string
	xmpLoaded bool
	closed    bool
	logger    zerolog.Logger
}

// Open opens a GIF file, which may be gzip or zstd compressed.
func Open(path string, opts ...Option) (*Dataset, error) {
	cfg := &config{logger: log.Logger}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.access != raster.ReadOnly {
		return nil, fmt.Errorf("%w: GIF files cannot be opened for %s", raster.ErrNotSupported, cfg.access)
	}

	f, err := vfs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", raster.ErrIO, path, err)
	}

	r := binpkg.NewReader(f, binpkg.DefaultConfig())
	head, err := r.Peek(6)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		f.Close()
		return nil, fmt.Errorf("%w: reading signature: %w", raster.ErrIO, err)
	}
	if !Identify(head) {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a GIF file", raster.ErrFormat, path)
	}

	screen, im, err := parseStream(r)
	if err != nil {
		f.Close()
		return nil, err
	}

	ds := &Dataset{
		path:   path,
		file:   f,
		screen: screen,
		image:  im,
		md:     raster.MetadataDomains{},
		logger: cfg.logger,
	}
	ds.band = newBand(ds)
	if im.Interlaced {
		ds.md.Set(raster.ImageStructureDomain, "INTERLACED", "YES")
	} else {
		ds.md.Set(raster.ImageStructureDomain, "INTERLACED", "NO")
	}
	ds.detectGeoreferencing()

	cfg.logger.Debug().
		Str("path", path).
		Int("width", im.Width).
		Int("height", im.Height).
		Bool("interlaced", im.Interlaced).
		Msg("opened GIF")
	return ds, nil
}

func (d *Dataset) detectGeoreferencing() {
	p, gt, ok := raster.FindWorldFile(vfs.StripCompressionExt(d.path))
	if !ok {
		return
	}
	d.gt, d.hasGT, d.worldFile = gt, true, p
	d.logger.Debug().Str("path", p).Msg("loaded world file")
}

// Screen returns the logical screen descriptor.
func (d *Dataset) Screen() *ScreenDescriptor { return d.screen }

// Image returns the record of the exposed image.
func (d *Dataset) Image() *ImageRecord { return d.image }

func (d *Dataset) Size() (int, int) { return d.image.Width, d.image.Height }
func (d *Dataset) BandCount() int   { return 1 }

func (d *Dataset) Band(n int) (raster.Band, error) {
	if d.closed {
		return nil, raster.ErrClosed
	}
	if n != 1 {
		return nil, raster.BandIndexError(n, 1)
	}
	return d.band, nil
}

func (d *Dataset) GeoTransform() (raster.GeoTransform, bool) { return d.gt, d.hasGT }

// SpatialRef returns nil; GIF files carry no reference system.
func (d *Dataset) SpatialRef() raster.SpatialRef { return nil }

// Metadata returns one metadata domain. The raster.XMPDomain domain is
// loaded on first request.
func (d *Dataset) Metadata(domain string) raster.Metadata {
	if domain == raster.XMPDomain {
		if _, _, err := d.XMP(); err != nil {
			d.logger.Warn().Err(err).Str("path", d.path).Msg("failed to scan for XMP metadata")
		}
	}
	return d.md.Domain(domain)
}

// MetadataDomains lists the domains holding items, plus raster.XMPDomain,
// which is always listed because it is loaded on request.
func (d *Dataset) MetadataDomains() []string {
	names := d.md.Names()
	if !slices.Contains(names, raster.XMPDomain) {
		names = append(names, raster.XMPDomain)
		slices.Sort(names)
	}
	return names
}

// XMP returns the embedded XMP packet. The stream is scanned once; later
// calls return the cached result.
func (d *Dataset) XMP() ([]byte, bool, error) {
	if d.closed {
		return nil, false, raster.ErrClosed
	}
	if !d.xmpLoaded {
		pkt, err := packet.Locate(d.file, packet.XMPFraming)
		if err != nil {
			return nil, false, err
		}
		d.xmpLoaded = true
		if pkt.Found {
			d.md.Set(raster.XMPDomain, XMPKey, string(pkt.Data))
			d.logger.Debug().Int("bytes", len(pkt.Data)).Msg("found XMP packet")
		}
	}
	v, ok := d.md.Domain(raster.XMPDomain)[XMPKey]
	return []byte(v), ok, nil
}

// FileList returns the GIF file and its world file, if any.
func (d *Dataset) FileList() []string {
	files := []string{d.path}
	if d.worldFile != "" {
		files = append(files, d.worldFile)
	}
	return files
}

// Close releases the file. Closing twice is a no-op.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.band.pixels = nil
	return d.file.Close()
}

// Band is the palette band of a GIF image.
type Band struct {
	ds        *Dataset
	palette   render.PaletteBand
	interlace render.InterlaceMap
	md        raster.Metadata
	pixels    []byte
}

func newBand(ds *Dataset) *Band {
	im := ds.image
	b := &Band{
		ds:      ds,
		palette: render.DerivePaletteBand(im.Palette(ds.screen), im.Extensions),
		md:      raster.Metadata{},
	}
	if im.Interlaced {
		b.interlace = render.DeriveInterlaceMap(im.Height)
	}
	if bg := ds.screen.Background; bg != 255 {
		b.md["GIF_BACKGROUND"] = strconv.Itoa(bg)
	}
	return b
}

func (b *Band) Number() int                     { return 1 }
func (b *Band) Kind() raster.BandKind           { return raster.KindPalette }
func (b *Band) DataType() raster.DataType       { return raster.Byte }
func (b *Band) Size() (int, int)                { return b.ds.Size() }
func (b *Band) Description() string             { return "" }
func (b *Band) NoData() (float64, bool)         { return b.palette.NoData() }
func (b *Band) Metadata() raster.Metadata       { return b.md }
func (b *Band) ColorInterp() raster.ColorInterp { return raster.ColorPalette }
func (b *Band) ColorTable() raster.ColorTable   { return b.palette.ColorTable }

// ReadRowBytes reads one row of palette indices.
func (b *Band) ReadRowBytes(row int, dst []byte) error {
	if b.ds.closed {
		return raster.ErrClosed
	}
	if err := raster.CheckRow(b, row, len(dst)); err != nil {
		return err
	}
	if b.pixels == nil {
		pix, err := b.ds.image.decode()
		if err != nil {
			return err
		}
		b.pixels = pix
	}
	if b.interlace != nil {
		row = b.interlace.Physical(row)
	}
	w := b.ds.image.Width
	copy(dst, b.pixels[row*w:(row+1)*w])
	return nil
}

func (b *Band) ReadRow(row int, dst []float64) error {
	if err := raster.CheckRow(b, row, len(dst)); err != nil {
		return err
	}
	raw := make([]byte, b.ds.image.Width)
	if err := b.ReadRowBytes(row, raw); err != nil {
		return err
	}
	for i, v := range raw {
		dst[i] = float64(v)
	}
	return nil
}
