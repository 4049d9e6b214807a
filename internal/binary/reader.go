// Package binary provides low-level binary I/O for fixed-layout raster headers.
package binary

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Reader reads fixed-width little-endian fields at an explicit position.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// Config holds reader and writer configuration.
type Config struct {
	ByteOrder binary.ByteOrder
}

// DefaultConfig returns the little-endian configuration used by every
// format in this module.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian}
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{r: r, order: order}
}

// NewBytesReader creates a reader over an in-memory buffer.
func NewBytesReader(buf []byte) *Reader {
	return NewReader(bytes.NewReader(buf), DefaultConfig())
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, order: r.order, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// SeekTo moves the read position to an absolute offset.
func (r *Reader) SeekTo(offset int64) {
	r.pos = offset
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	if read == n {
		// io.ReaderAt may report io.EOF alongside a full read.
		err = nil
	} else if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadInt16 reads a signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadFloat64 reads an IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadFixedString reads a fixed-width slot and returns the bytes before the
// first NUL. The last byte of the slot is always treated as a terminator.
func (r *Reader) ReadFixedString(width int) ([]byte, error) {
	buf, err := r.ReadBytes(width)
	if err != nil {
		return nil, err
	}
	if width > 0 {
		buf = buf[:width-1]
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return buf, nil
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	pos := r.pos
	buf, err := r.ReadBytes(n)
	r.pos = pos
	return buf, err
}
