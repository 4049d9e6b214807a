package raster

// ProxyBand exposes a band owned by another dataset under a new identity.
// It holds a reference to the underlying band, not ownership: the owning
// dataset must stay open for as long as the proxy is used.
type ProxyBand struct {
	base        Band
	number      int
	description *string
	colorInterp *ColorInterp
	colorTable  ColorTable
	metadata    Metadata
}

// NewProxyBand wraps base as band number n of another dataset.
func NewProxyBand(base Band, n int) *ProxyBand {
	return &ProxyBand{base: base, number: n}
}

// Underlying returns the wrapped band.
func (p *ProxyBand) Underlying() Band { return p.base }

func (p *ProxyBand) Number() int        { return p.number }
func (p *ProxyBand) Kind() BandKind     { return KindProxy }
func (p *ProxyBand) DataType() DataType { return p.base.DataType() }

func (p *ProxyBand) Size() (int, int) { return p.base.Size() }

func (p *ProxyBand) ReadRow(row int, dst []float64) error {
	return p.base.ReadRow(row, dst)
}

func (p *ProxyBand) NoData() (float64, bool) { return p.base.NoData() }

// Description returns the override, falling back to the underlying band.
func (p *ProxyBand) Description() string {
	if p.description != nil {
		return *p.description
	}
	return p.base.Description()
}

// SetDescription overrides the description without touching the underlying band.
func (p *ProxyBand) SetDescription(s string) { p.description = &s }

// ColorInterp returns the override, falling back to the underlying band.
func (p *ProxyBand) ColorInterp() ColorInterp {
	if p.colorInterp != nil {
		return *p.colorInterp
	}
	return p.base.ColorInterp()
}

// SetColorInterp overrides the color interpretation.
func (p *ProxyBand) SetColorInterp(c ColorInterp) { p.colorInterp = &c }

// ColorTable returns the override, falling back to the underlying band.
func (p *ProxyBand) ColorTable() ColorTable {
	if p.colorTable != nil {
		return p.colorTable
	}
	return p.base.ColorTable()
}

// SetColorTable overrides the palette.
func (p *ProxyBand) SetColorTable(ct ColorTable) { p.colorTable = ct }

// Metadata merges the proxy's own items over those of the underlying band.
func (p *ProxyBand) Metadata() Metadata {
	md := p.base.Metadata().Clone()
	for k, v := range p.metadata {
		md[k] = v
	}
	return md
}

// SetMetadataItem sets an item on the proxy only.
func (p *ProxyBand) SetMetadataItem(key, value string) {
	if p.metadata == nil {
		p.metadata = Metadata{}
	}
	p.metadata[key] = value
}
