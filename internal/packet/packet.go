// Package packet locates metadata packets embedded in a byte stream.
//
// A packet is announced by a fixed signature and ends at a NUL byte whose
// preceding bytes satisfy a format-specific trailer check. The stream is
// scanned through a 2048-byte window filled 1024 bytes at a time, so a
// signature straddling two reads is still found:
//
//	+-----------------+-----------------+
//	| previous chunk  |   fresh chunk   |
//	+-----------------+-----------------+
//	0               1024              2048
//
// The caller's read position is restored before [Locate] returns.
package packet

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-georaster/raster"
)

const (
	chunkSize  = 1024
	windowSize = 2 * chunkSize
)

// Framing describes how a packet is delimited.
type Framing struct {
	// Signature precedes the payload.
	Signature []byte

	// Trailer inspects the bytes between the signature and a NUL. It returns
	// the packet body and true when the NUL terminates the packet.
	Trailer func(payload []byte) ([]byte, bool)

	// MaxSize bounds the accumulated payload. Larger payloads are treated
	// as absent.
	MaxSize int
}

// Packet is the result of a scan.
type Packet struct {
	Data  []byte
	Found bool
}

// XMPFraming frames an XMP packet stored in a GIF application extension.
var XMPFraming = Framing{
	Signature: []byte("\x21\xff\x0bXMP DataXMP"),
	Trailer:   xmpTrailer,
	MaxSize:   64 << 20,
}

// xmpTrailerSize is the length of the "magic trailer" that keeps GIF
// readers from interpreting the XMP text as sub-block lengths.
const xmpTrailerSize = 256

func xmpTrailer(p []byte) ([]byte, bool) {
	n := len(p)
	if n <= xmpTrailerSize {
		return nil, false
	}
	if p[n-1] != 0x01 || p[n-2] != 0x02 || p[n-255] != 0xFF || p[n-256] != 0x01 {
		return nil, false
	}
	return p[:n-xmpTrailerSize], true
}

// Locate scans rs from the start for the first packet framed by f.
// A missing packet is not an error. Only read and seek failures are
// returned, wrapped with raster.ErrIO.
func Locate(rs io.ReadSeeker, f Framing) (pkt Packet, err error) {
	if len(f.Signature) == 0 || len(f.Signature) > chunkSize {
		panic("packet: signature must be 1..1024 bytes")
	}

	saved, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: saving position: %w", raster.ErrIO, err)
	}
	defer func() {
		if _, serr := rs.Seek(saved, io.SeekStart); serr != nil && err == nil {
			pkt, err = Packet{}, fmt.Errorf("%w: restoring position: %w", raster.ErrIO, serr)
		}
	}()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Packet{}, fmt.Errorf("%w: rewinding: %w", raster.ErrIO, err)
	}

	sigLen := len(f.Signature)
	window := make([]byte, windowSize)
	start := chunkSize

	for {
		n, err := readChunk(rs, window[chunkSize:])
		if err != nil {
			return Packet{}, err
		}
		end := chunkSize + n
		for i := start; i <= end-sigLen; i++ {
			if !bytes.Equal(window[i:i+sigLen], f.Signature) {
				continue
			}
			payload := append([]byte(nil), window[i+sigLen:end]...)
			return collect(rs, f, payload, n == chunkSize)
		}
		if n != chunkSize {
			return Packet{}, nil
		}
		copy(window[:chunkSize], window[chunkSize:])
		start = 0
	}
}

// collect grows payload until a NUL accepted by the framing trailer, or
// until the end of the stream, where the whole payload is checked once.
func collect(rs io.Reader, f Framing, payload []byte, more bool) (Packet, error) {
	from := 0
	chunk := make([]byte, chunkSize)
	for {
		for {
			k := bytes.IndexByte(payload[from:], 0)
			if k < 0 {
				break
			}
			nul := from + k
			if body, ok := f.Trailer(payload[:nul]); ok {
				return Packet{Data: body, Found: true}, nil
			}
			from = nul + 1
		}
		from = len(payload)

		if !more {
			return atEnd(f, payload), nil
		}
		n, err := readChunk(rs, chunk)
		if err != nil {
			return Packet{}, err
		}
		if n == 0 {
			return atEnd(f, payload), nil
		}
		payload = append(payload, chunk[:n]...)
		if f.MaxSize > 0 && len(payload) > f.MaxSize {
			return Packet{}, nil
		}
		more = n == chunkSize
	}
}

func atEnd(f Framing, payload []byte) Packet {
	if body, ok := f.Trailer(payload); ok {
		return Packet{Data: body, Found: true}
	}
	return Packet{}
}

// readChunk fills buf as far as the stream allows. A short count means
// the end of the stream was reached.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w: scanning stream: %w", raster.ErrIO, err)
	}
	return n, nil
}
