package raster

import "fmt"

// MemDataset is a dataset held entirely in memory. It is used as a
// conversion source and in tests.
type MemDataset struct {
	xsize, ysize int
	bands        []Band
	gt           GeoTransform
	hasGT        bool
	srs          SpatialRef
	files        []string
	md           MetadataDomains
	closed       bool
}

// NewMemDataset creates an empty dataset of the given size.
func NewMemDataset(xsize, ysize int) *MemDataset {
	return &MemDataset{xsize: xsize, ysize: ysize, md: MetadataDomains{}}
}

// AddBand appends a band holding data in row-major order.
func (d *MemDataset) AddBand(dt DataType, data []float64) (*MemBand, error) {
	if len(data) != d.xsize*d.ysize {
		return nil, fmt.Errorf("%w: band data has %d samples, need %d", ErrFormat, len(data), d.xsize*d.ysize)
	}
	b := &MemBand{
		number: len(d.bands) + 1,
		dt:     dt,
		xsize:  d.xsize,
		ysize:  d.ysize,
		data:   data,
		md:     Metadata{},
	}
	d.bands = append(d.bands, b)
	return b, nil
}

// AttachBand appends an existing band, such as a [ProxyBand].
func (d *MemDataset) AttachBand(b Band) error {
	x, y := b.Size()
	if x != d.xsize || y != d.ysize {
		return fmt.Errorf("%w: band is %dx%d, dataset is %dx%d", ErrFormat, x, y, d.xsize, d.ysize)
	}
	d.bands = append(d.bands, b)
	return nil
}

func (d *MemDataset) SetGeoTransform(gt GeoTransform) { d.gt, d.hasGT = gt, true }
func (d *MemDataset) SetSpatialRef(srs SpatialRef)    { d.srs = srs }
func (d *MemDataset) SetFileList(files []string)      { d.files = files }

// SetMetadataItem stores an item in the given domain.
func (d *MemDataset) SetMetadataItem(domain, key, value string) {
	d.md.Set(domain, key, value)
}

func (d *MemDataset) Size() (int, int) { return d.xsize, d.ysize }
func (d *MemDataset) BandCount() int   { return len(d.bands) }

func (d *MemDataset) Band(n int) (Band, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if n < 1 || n > len(d.bands) {
		return nil, BandIndexError(n, len(d.bands))
	}
	return d.bands[n-1], nil
}

func (d *MemDataset) GeoTransform() (GeoTransform, bool) { return d.gt, d.hasGT }
func (d *MemDataset) SpatialRef() SpatialRef             { return d.srs }
func (d *MemDataset) Metadata(domain string) Metadata    { return d.md.Domain(domain) }
func (d *MemDataset) FileList() []string                 { return d.files }

func (d *MemDataset) Close() error {
	d.closed = true
	return nil
}

// MemBand is a plain band backed by a float64 slice.
type MemBand struct {
	number       int
	dt           DataType
	xsize, ysize int
	data         []float64
	description  string
	noData       float64
	hasNoData    bool
	md           Metadata
	interp       ColorInterp
	colorTable   ColorTable
}

func (b *MemBand) Number() int              { return b.number }
func (b *MemBand) Kind() BandKind           { return KindPlain }
func (b *MemBand) DataType() DataType       { return b.dt }
func (b *MemBand) Size() (int, int)         { return b.xsize, b.ysize }
func (b *MemBand) Description() string      { return b.description }
func (b *MemBand) Metadata() Metadata       { return b.md }
func (b *MemBand) ColorInterp() ColorInterp { return b.interp }
func (b *MemBand) ColorTable() ColorTable   { return b.colorTable }

func (b *MemBand) NoData() (float64, bool) { return b.noData, b.hasNoData }

func (b *MemBand) SetDescription(s string)       { b.description = s }
func (b *MemBand) SetNoData(v float64)           { b.noData, b.hasNoData = v, true }
func (b *MemBand) SetColorInterp(c ColorInterp)  { b.interp = c }
func (b *MemBand) SetColorTable(ct ColorTable)   { b.colorTable = ct }
func (b *MemBand) SetMetadataItem(key, v string) { b.md[key] = v }

func (b *MemBand) ReadRow(row int, dst []float64) error {
	if err := checkRow(row, b.ysize, len(dst), b.xsize); err != nil {
		return err
	}
	copy(dst, b.data[row*b.xsize:(row+1)*b.xsize])
	return nil
}
