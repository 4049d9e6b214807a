package raster

import "math"

// DataType identifies the sample type of a band.
type DataType uint8

// Sample types
const (
	Unknown DataType = iota
	Byte
	Int16
	UInt16
	Int32
	Float32
	Float64
	CFloat64
)

// Size returns the size of one sample in bytes.
func (t DataType) Size() int {
	switch t {
	case Byte:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	case CFloat64:
		return 16
	default:
		return 0
	}
}

// IsComplex reports whether samples carry a real and an imaginary part.
func (t DataType) IsComplex() bool {
	return t == CFloat64
}

func (t DataType) String() string {
	switch t {
	case Byte:
		return "Byte"
	case Int16:
		return "Int16"
	case UInt16:
		return "UInt16"
	case Int32:
		return "Int32"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case CFloat64:
		return "CFloat64"
	default:
		return "Unknown"
	}
}

// ToInt16 converts a sample to int16, rounding to nearest and saturating
// at the type bounds. NaN converts to 0.
func ToInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= math.MinInt16:
		return math.MinInt16
	case v >= math.MaxInt16:
		return math.MaxInt16
	}
	return int16(math.Round(v))
}
