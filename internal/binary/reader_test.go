package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReaderReadUint8(t *testing.T) {
	data := bytesReaderAt{0x42, 0xFF, 0x00}
	r := NewReader(data, DefaultConfig())

	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", v)
	}

	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02x", v)
	}
}

func TestReaderReadInt16(t *testing.T) {
	// -9999 stored little-endian
	data := bytesReaderAt{0xF1, 0xD8, 0x02, 0x01}
	r := NewReader(data, DefaultConfig())

	v, err := r.ReadInt16()
	if err != nil {
		t.Fatalf("ReadInt16 failed: %v", err)
	}
	if v != -9999 {
		t.Errorf("expected -9999, got %d", v)
	}

	u, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if u != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", u)
	}
}

func TestReaderReadInt32(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(21))
	binary.Write(&buf, binary.LittleEndian, int32(-1))

	r := NewReader(bytesReaderAt(buf.Bytes()), DefaultConfig())

	v, err := r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v != 21 {
		t.Errorf("expected 21, got %d", v)
	}

	v, err = r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v != -1 {
		t.Errorf("expected -1, got %d", v)
	}
}

func TestReaderReadFloat64(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(-113.25))

	r := NewReader(bytesReaderAt(buf.Bytes()), DefaultConfig())
	v, err := r.ReadFloat64()
	if err != nil {
		t.Fatalf("ReadFloat64 failed: %v", err)
	}
	if v != -113.25 {
		t.Errorf("expected -113.25, got %v", v)
	}
	if r.Pos() != 8 {
		t.Errorf("expected position 8, got %d", r.Pos())
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytesReaderAt{0x01, 0x02}, DefaultConfig())

	_, err := r.ReadUint32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("position moved on failed read: %d", r.Pos())
	}
}

func TestReaderFixedString(t *testing.T) {
	data := make(bytesReaderAt, 16)
	copy(data, "dem.asc")

	r := NewReader(data, DefaultConfig())
	s, err := r.ReadFixedString(8)
	if err != nil {
		t.Fatalf("ReadFixedString failed: %v", err)
	}
	if string(s) != "dem.asc" {
		t.Errorf("expected %q, got %q", "dem.asc", s)
	}

	// The last byte of a slot is a terminator even when it is not NUL.
	full := bytesReaderAt("abcdefgh")
	s, err = NewReader(full, DefaultConfig()).ReadFixedString(8)
	if err != nil {
		t.Fatalf("ReadFixedString failed: %v", err)
	}
	if string(s) != "abcdefg" {
		t.Errorf("expected %q, got %q", "abcdefg", s)
	}
}

func TestReaderAt(t *testing.T) {
	data := bytesReaderAt{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data, DefaultConfig())

	r2 := r.At(3)
	v, err := r2.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}
	if r.Pos() != 0 {
		t.Errorf("original reader position changed: %d", r.Pos())
	}
}

func TestReaderSkipAndSeek(t *testing.T) {
	data := bytesReaderAt{0x00, 0x01, 0x02, 0x03}
	r := NewReader(data, DefaultConfig())

	r.Skip(2)
	if r.Pos() != 2 {
		t.Errorf("expected position 2, got %d", r.Pos())
	}
	r.SeekTo(1)
	v, _ := r.ReadUint8()
	if v != 0x01 {
		t.Errorf("expected 0x01, got 0x%02x", v)
	}
}

func TestReaderPeek(t *testing.T) {
	data := bytesReaderAt{0x21, 0xF9, 0x04}
	r := NewReader(data, DefaultConfig())

	peek, err := r.Peek(2)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peek, []byte{0x21, 0xF9}) {
		t.Errorf("unexpected peek result %v", peek)
	}
	if r.Pos() != 0 {
		t.Errorf("Peek advanced position to %d", r.Pos())
	}
}
