package gif

import (
	"bytes"
	"compress/lzw"
	"errors"
	"fmt"
	"image/color"
	"io"

	binpkg "github.com/robert-malhotra/go-georaster/internal/binary"
	"github.com/robert-malhotra/go-georaster/internal/render"
	"github.com/robert-malhotra/go-georaster/raster"
)

// Block introducers
const (
	extensionIntroducer = 0x21
	imageSeparator      = 0x2C
	trailer             = 0x3B
)

// labelContinuation tags the sub-blocks following the first one of an
// extension.
const labelContinuation = 0x00

const (
	flagColorTable = 0x80
	flagInterlace  = 0x40
)

// ScreenDescriptor is the logical screen of a GIF stream.
type ScreenDescriptor struct {
	Version          string // "87a" or "89a"
	Width, Height    int
	Background       int
	AspectRatio      byte
	GlobalColorTable color.Palette
}

// ImageRecord is one image of a GIF stream with the extension blocks that
// precede it.
type ImageRecord struct {
	Left, Top     int
	Width, Height int
	Interlaced    bool
	ColorTable    color.Palette // local table, or nil
	Extensions    []render.ExtensionRecord

	litWidth int
	data     []byte // concatenated LZW sub-blocks
}

// Palette returns the local color table, or the global one.
func (im *ImageRecord) Palette(screen *ScreenDescriptor) color.Palette {
	if im.ColorTable != nil {
		return im.ColorTable
	}
	return screen.GlobalColorTable
}

// parseStream reads the screen descriptor and the first image. Records
// after the first image are not read.
func parseStream(r *binpkg.Reader) (*ScreenDescriptor, *ImageRecord, error) {
	sig, err := r.ReadBytes(6)
	if err != nil {
		return nil, nil, formatErr("signature", err)
	}
	if !bytes.Equal(sig[:3], []byte("GIF")) {
		return nil, nil, fmt.Errorf("%w: not a GIF stream", raster.ErrFormat)
	}
	screen := &ScreenDescriptor{Version: string(sig[3:])}
	if screen.Version != "87a" && screen.Version != "89a" {
		return nil, nil, fmt.Errorf("%w: unknown GIF version %q", raster.ErrFormat, screen.Version)
	}

	w, err := r.ReadUint16()
	if err != nil {
		return nil, nil, formatErr("screen descriptor", err)
	}
	h, err := r.ReadUint16()
	if err != nil {
		return nil, nil, formatErr("screen descriptor", err)
	}
	packed, err := r.ReadUint8()
	if err != nil {
		return nil, nil, formatErr("screen descriptor", err)
	}
	bg, err := r.ReadUint8()
	if err != nil {
		return nil, nil, formatErr("screen descriptor", err)
	}
	aspect, err := r.ReadUint8()
	if err != nil {
		return nil, nil, formatErr("screen descriptor", err)
	}
	screen.Width, screen.Height = int(w), int(h)
	screen.Background = int(bg)
	screen.AspectRatio = aspect
	if packed&flagColorTable != 0 {
		if screen.GlobalColorTable, err = readColorTable(r, packed); err != nil {
			return nil, nil, err
		}
	}

	var exts []render.ExtensionRecord
	for {
		intro, err := r.ReadUint8()
		if err != nil {
			return nil, nil, formatErr("block introducer", err)
		}
		switch intro {
		case extensionIntroducer:
			recs, err := readExtension(r)
			if err != nil {
				return nil, nil, err
			}
			exts = append(exts, recs...)
		case imageSeparator:
			im, err := readImage(r)
			if err != nil {
				return nil, nil, err
			}
			im.Extensions = exts
			return screen, im, nil
		case trailer:
			return nil, nil, fmt.Errorf("%w: GIF stream holds no image", raster.ErrFormat)
		default:
			return nil, nil, fmt.Errorf("%w: unknown block introducer 0x%02x at offset %d", raster.ErrFormat, intro, r.Pos()-1)
		}
	}
}

func readColorTable(r *binpkg.Reader, packed byte) (color.Palette, error) {
	n := 1 << (int(packed&0x07) + 1)
	raw, err := r.ReadBytes(3 * n)
	if err != nil {
		return nil, formatErr("color table", err)
	}
	p := make(color.Palette, n)
	for i := range p {
		p[i] = color.RGBA{R: raw[3*i], G: raw[3*i+1], B: raw[3*i+2], A: 0xFF}
	}
	return p, nil
}

// readExtension reads one extension. The first sub-block carries the
// label; later sub-blocks are continuation records.
func readExtension(r *binpkg.Reader) ([]render.ExtensionRecord, error) {
	label, err := r.ReadUint8()
	if err != nil {
		return nil, formatErr("extension label", err)
	}
	var recs []render.ExtensionRecord
	fn := label
	for {
		block, err := readSubBlock(r)
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		recs = append(recs, render.ExtensionRecord{Function: fn, Data: block})
		fn = labelContinuation
	}
	if len(recs) == 0 {
		recs = append(recs, render.ExtensionRecord{Function: label})
	}
	return recs, nil
}

// readSubBlock returns the next data sub-block, or nil at the terminator.
func readSubBlock(r *binpkg.Reader) ([]byte, error) {
	n, err := r.ReadUint8()
	if err != nil {
		return nil, formatErr("sub-block size", err)
	}
	if n == 0 {
		return nil, nil
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, formatErr("sub-block", err)
	}
	return b, nil
}

func readImage(r *binpkg.Reader) (*ImageRecord, error) {
	var v [4]uint16
	for i := range v {
		var err error
		if v[i], err = r.ReadUint16(); err != nil {
			return nil, formatErr("image descriptor", err)
		}
	}
	packed, err := r.ReadUint8()
	if err != nil {
		return nil, formatErr("image descriptor", err)
	}
	im := &ImageRecord{
		Left:       int(v[0]),
		Top:        int(v[1]),
		Width:      int(v[2]),
		Height:     int(v[3]),
		Interlaced: packed&flagInterlace != 0,
	}
	if im.Width == 0 || im.Height == 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", raster.ErrFormat, im.Width, im.Height)
	}
	if packed&flagColorTable != 0 {
		if im.ColorTable, err = readColorTable(r, packed); err != nil {
			return nil, err
		}
	}

	lw, err := r.ReadUint8()
	if err != nil {
		return nil, formatErr("LZW code size", err)
	}
	if lw < 2 || lw > 8 {
		return nil, fmt.Errorf("%w: LZW code size %d out of range", raster.ErrFormat, lw)
	}
	im.litWidth = int(lw)

	var data bytes.Buffer
	for {
		block, err := readSubBlock(r)
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		data.Write(block)
	}
	im.data = data.Bytes()
	return im, nil
}

// decode inflates the image samples in storage order.
func (im *ImageRecord) decode() ([]byte, error) {
	lr := lzw.NewReader(bytes.NewReader(im.data), lzw.LSB, im.litWidth)
	defer lr.Close()

	pix := make([]byte, im.Width*im.Height)
	if _, err := io.ReadFull(lr, pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: not enough image data", raster.ErrFormat)
		}
		return nil, fmt.Errorf("%w: decoding image: %w", raster.ErrFormat, err)
	}
	return pix, nil
}

func formatErr(what string, err error) error {
	return fmt.Errorf("%w: reading %s: %w", raster.ErrFormat, what, err)
}
