package binary

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer writes fixed-width little-endian fields at an explicit position.
// Skipped ranges are left untouched in the underlying sink.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewWriter creates a binary writer with the given configuration.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{w: w, order: order}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// SeekTo moves the write position to an absolute offset without writing.
func (w *Writer) SeekTo(offset int64) {
	w.pos = offset
}

// Skip advances the position by n bytes without writing.
func (w *Writer) Skip(n int64) {
	w.pos += n
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	buf := make([]byte, 2)
	w.order.PutUint16(buf, v)
	return w.WriteBytes(buf)
}

// WriteInt16 writes a signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteInt32 writes a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	w.order.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteFloat64 writes an IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// WriteFixedString writes at most width-1 bytes of s followed by NUL padding
// up to width bytes.
func (w *Writer) WriteFixedString(s []byte, width int) error {
	if width <= 0 {
		return nil
	}
	buf := make([]byte, width)
	copy(buf[:width-1], s)
	return w.WriteBytes(buf)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// Buffer is a fixed-capacity in-memory io.WriterAt. Writes beyond the
// capacity grow the buffer.
type Buffer struct {
	buf []byte
}

// NewBuffer creates a zero-filled buffer of the given size.
func NewBuffer(size int) *Buffer {
	return &Buffer{buf: make([]byte, size)}
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (n int, err error) {
	if int(off)+len(p) > len(b.buf) {
		newBuf := make([]byte, int(off)+len(p))
		copy(newBuf, b.buf)
		b.buf = newBuf
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
