package tga

import (
	"fmt"
	"io"
	"strings"
)

// Compression selects how the Writer stores pixel data.
type Compression int

// Supported compression modes.
const (
	None Compression = iota
	RLE
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case RLE:
		return "rle"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// ParseCompression returns the Compression named by s.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none", "raw":
		return None, nil
	case "rle":
		return RLE, nil
	}
	return None, fmt.Errorf("tga: unknown compression %q", s)
}

type writerState int

const (
	stateIdle writerState = iota
	stateHeaderWritten
	stateAccumulating
	stateFlushing
	stateFinalized
)

// Writer encodes pixel data as a truecolor TGA file.
type Writer struct {
	w           io.Writer
	compression Compression

	width, height, pixelSize int

	state writerState

	// One maximal packet's worth of pixels
	block []byte
	n     int

	// Pixel bytes accepted so far
	written int

	packet []byte
}

// NewWriter returns a Writer that writes a width by height image with the
// given pixel depth to w.
func NewWriter(w io.Writer, width, height, bitsPerPixel int, c Compression) (*Writer, error) {
	if width < 0 || width > maxDimension || height < 0 || height > maxDimension {
		return nil, ErrGeometry
	}
	if bitsPerPixel <= 0 || bitsPerPixel%8 != 0 || bitsPerPixel/8 > maxPixel {
		return nil, ErrBitsPerPixel
	}
	if c != None && c != RLE {
		return nil, fmt.Errorf("tga: unknown compression %d", int(c))
	}

	pixelSize := bitsPerPixel / 8

	return &Writer{
		w:           w,
		compression: c,
		width:       width,
		height:      height,
		pixelSize:   pixelSize,
		block:       make([]byte, maxPacket*pixelSize),
		packet:      make([]byte, 0, 1+maxPacket*pixelSize),
	}, nil
}

// Header returns the header written ahead of the pixel data.
func (w *Writer) Header() Header {
	h := Header{
		ImageType:    TrueColorRaw,
		Width:        uint16(w.width),
		Height:       uint16(w.height),
		BitsPerPixel: byte(w.pixelSize * 8),
	}
	if w.compression == RLE {
		h.ImageType = TrueColorRLE
	}
	// Declare an 8-bit alpha channel for 32-bit pixels
	if w.pixelSize == 4 {
		h.ImageDescriptor = 8
	}
	return h
}

// Written returns the number of pixel bytes accepted so far. A partial pixel
// left over when the producer runs dry isn't counted.
func (w *Writer) Written() int {
	return w.written
}

// Encode writes the header followed by the pixel data pulled from next.
// next is called until it has supplied width * height pixels, it returns
// an empty slice once it has nothing more. Any surplus bytes are ignored.
//
// If next runs out early, whatever has been supplied is written and
// ErrShortPixelData is returned. Errors from next or from the underlying
// writer are returned as is. A Writer can only Encode once.
func (w *Writer) Encode(next func() ([]byte, error)) error {
	if w.state != stateIdle {
		return ErrFinalized
	}
	defer func() {
		w.state = stateFinalized
	}()

	if err := w.writeHeader(); err != nil {
		return err
	}

	total := w.width * w.height * w.pixelSize

	for w.written < total {
		b, err := next()
		if err != nil {
			return err
		}
		if len(b) == 0 {
			// A dangling partial pixel is dropped in both modes
			partial := w.n % w.pixelSize
			w.n -= partial
			w.written -= partial

			if err := w.flush(); err != nil {
				return err
			}
			return ErrShortPixelData
		}
		if remaining := total - w.written; len(b) > remaining {
			b = b[:remaining]
		}
		if err := w.fillPixelBlock(b); err != nil {
			return err
		}
	}

	// Ensure the last block is stored
	return w.flush()
}

func (w *Writer) flush() error {
	w.state = stateFlushing
	return w.storePixelBlock(true)
}

func (w *Writer) writeHeader() error {
	h := w.Header()
	b, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.state = stateHeaderWritten
	return nil
}

func (w *Writer) fillPixelBlock(b []byte) error {
	w.state = stateAccumulating
	for len(b) > 0 {
		if w.n == len(w.block) {
			if err := w.storePixelBlock(false); err != nil {
				return err
			}
		}
		n := copy(w.block[w.n:], b)
		w.n += n
		w.written += n
		b = b[n:]
	}
	return nil
}

func (w *Writer) storePixelBlock(last bool) error {
	if w.n == 0 {
		return nil
	}
	if w.compression == None {
		if _, err := w.w.Write(w.block[:w.n]); err != nil {
			return err
		}
		w.n = 0
		return nil
	}
	return w.storePixelBlockRLE(last)
}

func (w *Writer) pixel(i int) []byte {
	return w.block[i*w.pixelSize : (i+1)*w.pixelSize]
}

func (w *Writer) runLength(i, pixels int) int {
	run := 1
	p := w.pixel(i)
	for i+run < pixels && run < maxPacket && string(w.pixel(i+run)) == string(p) {
		run++
	}
	return run
}

func (w *Writer) storePixelBlockRLE(last bool) error {
	pixels := w.n / w.pixelSize

	// Pixels from start up to i are waiting to be written as a raw packet
	start, i := 0, 0
	for i < pixels {
		if run := w.runLength(i, pixels); run > 1 {
			// A run touching the end of the block might carry on
			// into the next one
			if !last && i+run == pixels && run < maxPacket {
				if err := w.writeRawPacket(start, i-start); err != nil {
					return err
				}
				start = i
				break
			}
			if err := w.writeRawPacket(start, i-start); err != nil {
				return err
			}
			if err := w.writeRepeatPacket(i, run); err != nil {
				return err
			}
			i += run
			start = i
			continue
		}

		i++
		if i-start == maxPacket {
			if err := w.writeRawPacket(start, maxPacket); err != nil {
				return err
			}
			start = i
		}
	}

	if last {
		if err := w.writeRawPacket(start, pixels-start); err != nil {
			return err
		}
		w.n = 0
		return nil
	}

	// Keep anything pending for the next cycle
	w.n = copy(w.block, w.block[start*w.pixelSize:w.n])
	return nil
}

func (w *Writer) writeRawPacket(start, count int) error {
	if count == 0 {
		return nil
	}
	w.packet = append(w.packet[:0], byte(count-1))
	w.packet = append(w.packet, w.block[start*w.pixelSize:(start+count)*w.pixelSize]...)
	_, err := w.w.Write(w.packet)
	return err
}

func (w *Writer) writeRepeatPacket(start, count int) error {
	w.packet = append(w.packet[:0], repeatFlag|byte(count-1))
	w.packet = append(w.packet, w.pixel(start)...)
	_, err := w.w.Write(w.packet)
	return err
}

// SliceProducer returns a pixel producer for Writer.Encode that hands out b
// in pieces of at most chunk bytes. A chunk of zero or less hands out b in
// one go.
func SliceProducer(b []byte, chunk int) func() ([]byte, error) {
	return func() ([]byte, error) {
		n := chunk
		if n <= 0 || n > len(b) {
			n = len(b)
		}
		p := b[:n]
		b = b[n:]
		return p, nil
	}
}
