/*
Package tga implements a decoder and encoder for the pixel data of Truevision
TGA images.

A TGA file starts with a fixed 18 byte header, followed by an optional
identification block, an optional color map and finally the pixel data. Pixel
data is either stored uncompressed or as a stream of run-length encoded
packets. Each packet starts with a control byte; if the top bit is set the
following pixel is repeated, otherwise the following pixels are stored
verbatim. The lower seven bits hold the number of pixels minus one so a packet
covers at most 128 pixels.

The codec treats each pixel as an opaque group of 1 to 4 bytes and never
interprets the channels or the origin bits of the image descriptor; package
github.com/bodgit/tga/image does that.
*/
package tga

import (
	"errors"
	"fmt"
)

// HeaderSize is the size in bytes of the fixed TGA header.
const HeaderSize = 18

const (
	maxPacket    = 128
	maxDimension = 1<<16 - 1
	maxPixel     = 4

	repeatFlag = 0x80
	countMask  = 0x7f
)

// ImageType is the image_type header field.
type ImageType uint8

// Image types defined by the TGA format.
const (
	NoImage        ImageType = 0
	ColorMappedRaw ImageType = 1
	TrueColorRaw   ImageType = 2
	MonochromeRaw  ImageType = 3
	ColorMappedRLE ImageType = 9
	TrueColorRLE   ImageType = 10
	MonochromeRLE  ImageType = 11
)

func (t ImageType) String() string {
	switch t {
	case NoImage:
		return "none"
	case ColorMappedRaw:
		return "color-mapped"
	case TrueColorRaw:
		return "truecolor"
	case MonochromeRaw:
		return "monochrome"
	case ColorMappedRLE:
		return "color-mapped rle"
	case TrueColorRLE:
		return "truecolor rle"
	case MonochromeRLE:
		return "monochrome rle"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Compressed reports whether pixel data of this type is run-length encoded.
func (t ImageType) Compressed() bool {
	return t == ColorMappedRLE || t == TrueColorRLE || t == MonochromeRLE
}

var (
	// ErrBitsPerPixel is returned for a pixel depth that isn't a whole
	// number of bytes between 1 and 4.
	ErrBitsPerPixel = errors.New("tga: unsupported bits per pixel")
	// ErrGeometry is returned for image dimensions that don't fit the
	// 16-bit header fields.
	ErrGeometry = errors.New("tga: invalid image dimensions")
	// ErrFinalized is returned when encoding is attempted more than once.
	ErrFinalized = errors.New("tga: writer already finalized")
	// ErrShortPixelData is returned when the pixel producer is exhausted
	// before the whole image has been written.
	ErrShortPixelData = errors.New("tga: not enough pixel data")
	// ErrStop can be returned by a pixel consumer to stop decoding early
	// without Decode reporting an error.
	ErrStop = errors.New("tga: stop decoding")
)

// BoundsError records a read outside of the available bytes.
type BoundsError struct {
	Offset int64
	Length int64
	Size   int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("tga: read of %d bytes at offset %d out of bounds (size %d)", e.Length, e.Offset, e.Size)
}
