package raster

import "fmt"

// ComplexBand combines an in-phase and a quadrature band into one band of
// complex samples. Both bands must have the same size.
type ComplexBand struct {
	number int
	i, q   Band
	bufI   []float64
	bufQ   []float64
}

// NewComplexBand pairs i and q as band number n.
func NewComplexBand(n int, i, q Band) (*ComplexBand, error) {
	ix, iy := i.Size()
	qx, qy := q.Size()
	if ix != qx || iy != qy {
		return nil, fmt.Errorf("%w: I band is %dx%d, Q band is %dx%d", ErrFormat, ix, iy, qx, qy)
	}
	if i.DataType().IsComplex() || q.DataType().IsComplex() {
		return nil, fmt.Errorf("%w: I and Q bands must be real", ErrFormat)
	}
	return &ComplexBand{number: n, i: i, q: q}, nil
}

func (c *ComplexBand) Number() int              { return c.number }
func (c *ComplexBand) Kind() BandKind           { return KindComplex }
func (c *ComplexBand) DataType() DataType       { return CFloat64 }
func (c *ComplexBand) Size() (int, int)         { return c.i.Size() }
func (c *ComplexBand) Description() string      { return c.i.Description() }
func (c *ComplexBand) NoData() (float64, bool)  { return c.i.NoData() }
func (c *ComplexBand) Metadata() Metadata       { return c.i.Metadata() }
func (c *ComplexBand) ColorInterp() ColorInterp { return ColorUndefined }
func (c *ComplexBand) ColorTable() ColorTable   { return nil }

// ReadRowComplex reads one row of complex samples.
func (c *ComplexBand) ReadRowComplex(row int, dst []complex128) error {
	xsize, _ := c.Size()
	if len(dst) < xsize {
		return fmt.Errorf("%w: row buffer holds %d samples, need %d", ErrIO, len(dst), xsize)
	}
	if cap(c.bufI) < xsize {
		c.bufI = make([]float64, xsize)
		c.bufQ = make([]float64, xsize)
	}
	re, im := c.bufI[:xsize], c.bufQ[:xsize]
	if err := c.i.ReadRow(row, re); err != nil {
		return err
	}
	if err := c.q.ReadRow(row, im); err != nil {
		return err
	}
	for x := range xsize {
		dst[x] = complex(re[x], im[x])
	}
	return nil
}

// ReadRow returns the real part of each sample.
func (c *ComplexBand) ReadRow(row int, dst []float64) error {
	return c.i.ReadRow(row, dst)
}
