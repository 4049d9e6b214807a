// Package vfs opens raster files that may be stored compressed.
//
// Plain files are served directly from disk. Files starting with a gzip or
// zstd magic number are inflated into memory on open, so drivers always see
// a random-access [File].
package vfs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies a stream codec.
type Compression uint8

// Supported codecs
const (
	None Compression = iota
	Gzip
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ErrTooLarge is returned when a compressed file inflates past the limit.
var ErrTooLarge = errors.New("vfs: inflated file too large")

// MaxInflated bounds the in-memory size of a decompressed file.
const MaxInflated = 1 << 31

// File is an open, random-access, read-only file.
type File interface {
	io.ReaderAt
	io.ReadSeeker
	io.Closer

	// Name returns the path the file was opened with.
	Name() string

	// Size returns the logical (decompressed) size.
	Size() int64

	// Compression reports how the file is stored on disk.
	Compression() Compression
}

// Sniff detects the codec from the first bytes of a file.
func Sniff(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	default:
		return None
	}
}

// FromName detects the codec from a file name suffix.
func FromName(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	default:
		return None
	}
}

// StripCompressionExt removes a .gz or .zst suffix.
func StripCompressionExt(name string) string {
	if FromName(name) == None {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Open opens path, inflating it when it is compressed.
func Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	head := make([]byte, len(zstdMagic))
	n, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("sniffing %s: %w", path, err)
	}
	codec := Sniff(head[:n])
	if codec == None {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		return &diskFile{File: f, size: info.Size()}, nil
	}
	defer f.Close()

	data, err := inflate(f, codec)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", path, err)
	}
	return &memFile{Reader: bytes.NewReader(data), name: path, codec: codec}, nil
}

func inflate(r io.Reader, codec Compression) ([]byte, error) {
	var src io.Reader
	switch codec {
	case Gzip:
		zr, err := gzip.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		src = zr
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		src = zr
	default:
		panic("vfs: inflate called on uncompressed file")
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, MaxInflated+1))
	if err != nil {
		return nil, err
	}
	if n > MaxInflated {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

type diskFile struct {
	*os.File
	size int64
}

func (f *diskFile) Size() int64              { return f.size }
func (f *diskFile) Compression() Compression { return None }

type memFile struct {
	*bytes.Reader
	name   string
	codec  Compression
	closed bool
}

func (f *memFile) Name() string             { return f.name }
func (f *memFile) Compression() Compression { return f.codec }

func (f *memFile) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	f.Reader = bytes.NewReader(nil)
	return nil
}

// Create creates path for sequential writing. The output is compressed
// when the name ends in .gz or .zst.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)

	var enc io.WriteCloser
	switch FromName(path) {
	case Gzip:
		enc = gzip.NewWriter(bw)
	case Zstd:
		zw, err := zstd.NewWriter(bw, zstd.WithEncoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, err
		}
		enc = zw
	}
	return &outFile{f: f, bw: bw, enc: enc}, nil
}

type outFile struct {
	f   *os.File
	bw  *bufio.Writer
	enc io.WriteCloser
}

func (o *outFile) Write(p []byte) (int, error) {
	if o.enc != nil {
		return o.enc.Write(p)
	}
	return o.bw.Write(p)
}

// Close flushes every layer and closes the file.
func (o *outFile) Close() error {
	var errs []error
	if o.enc != nil {
		errs = append(errs, o.enc.Close())
	}
	errs = append(errs, o.bw.Flush(), o.f.Close())
	return errors.Join(errs...)
}
