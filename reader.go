package tga

import "errors"

// Reader decodes the pixel data of a TGA file.
type Reader struct {
	src    Source
	header Header

	// Enough to hold the header or a whole raw packet
	tmp [maxPacket * maxPixel]byte
}

// NewReader reads and validates the header from src. The returned Reader
// owns src until it is discarded.
func NewReader(src Source) (*Reader, error) {
	r := &Reader{src: src}

	b, err := src.Slice(0, HeaderSize, r.tmp[:])
	if err != nil {
		return nil, err
	}
	if err := r.header.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	if err := r.header.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Header returns a copy of the header.
func (r *Reader) Header() Header {
	return r.header
}

// Decode calls fn for each pixel in the order it is stored, which is row by
// row starting from the origin given by the image descriptor. The slice
// passed to fn is only valid for the duration of the call and must not be
// modified.
//
// Decoding stops silently at the end of the available data so a truncated
// file delivers fewer than Header().PixelCount() pixels. Any error returned
// by fn stops decoding and is returned, except ErrStop which results in a
// nil error.
//
// Color-mapped pixel data isn't decoded and fn is never called for it.
func (r *Reader) Decode(fn func(pixel []byte) error) error {
	var err error
	switch r.header.ImageType {
	case TrueColorRaw, MonochromeRaw:
		err = r.readPixelsRaw(fn)
	case TrueColorRLE, MonochromeRLE:
		err = r.readPixelsRLE(fn)
	case ColorMappedRaw:
		err = r.readMappedPixelsRaw(fn)
	case ColorMappedRLE:
		err = r.readMappedPixelsRLE(fn)
	}
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// Uncompressed pixel data runs from the end of the color map for the size
// of the image, or to the end of the source if that comes first.
func (r *Reader) dataRange() (int64, int64) {
	from := r.header.ImageDataOffset()
	to := from + r.header.ImageSize()
	if size := r.src.Size(); to > size {
		to = size
	}
	return from, to
}

func emit(b []byte, pixelSize int, fn func([]byte) error) error {
	for i := 0; i < len(b); i += pixelSize {
		if err := fn(b[i : i+pixelSize : i+pixelSize]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readPixelsRaw(fn func([]byte) error) error {
	pixelSize := int64(r.header.PixelBytes())
	from, to := r.dataRange()

	// Read up to a packet's worth of pixels at a time, any trailing
	// partial pixel is dropped
	for from+pixelSize <= to {
		n := (to - from) / pixelSize
		if n > maxPacket {
			n = maxPacket
		}
		b, err := r.src.Slice(from, n*pixelSize, r.tmp[:])
		if err != nil {
			return err
		}
		if err := emit(b, int(pixelSize), fn); err != nil {
			return err
		}
		from += n * pixelSize
	}

	return nil
}

func isRepeat(c byte) bool {
	return c&repeatFlag != 0
}

func packetLength(c byte) int64 {
	return 1 + int64(c&countMask)
}

// Compressed data can be larger than the uncompressed image so packets are
// read up to the end of the source, stopping once every pixel of the image
// has been delivered.
func (r *Reader) readPixelsRLE(fn func([]byte) error) error {
	pixelSize := int64(r.header.PixelBytes())
	from, to := r.header.ImageDataOffset(), r.src.Size()
	remaining := r.header.PixelCount()

	for from < to && remaining > 0 {
		b, err := r.src.Slice(from, 1, r.tmp[:])
		if err != nil {
			return err
		}
		c := b[0]
		from++

		count := packetLength(c)

		// A repeat packet holds one pixel, a raw packet one per count.
		// Either way, a packet that doesn't fit isn't emitted at all
		n := count * pixelSize
		if isRepeat(c) {
			n = pixelSize
		}
		if from+n > to {
			break
		}

		b, err = r.src.Slice(from, n, r.tmp[:])
		if err != nil {
			return err
		}
		from += n

		if count > remaining {
			count = remaining
		}
		remaining -= count

		if isRepeat(c) {
			for i := int64(0); i < count; i++ {
				if err := fn(b); err != nil {
					return err
				}
			}
		} else if err := emit(b[:count*pixelSize], int(pixelSize), fn); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reader) readMappedPixelsRaw(fn func([]byte) error) error {
	return nil
}

func (r *Reader) readMappedPixelsRLE(fn func([]byte) error) error {
	return nil
}
