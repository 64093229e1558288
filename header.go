package tga

import (
	"bytes"
	"encoding/binary"
)

// Origin flags within the image descriptor.
const (
	OriginRight = 1 << 4
	OriginTop   = 1 << 5
)

// Header is the fixed TGA file header. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Header struct {
	IDLength                byte
	ColorMapType            byte
	ImageType               ImageType
	ColorMapFirstEntryIndex uint16
	ColorMapLength          uint16
	ColorMapEntrySize       byte
	XOrigin                 uint16
	YOrigin                 uint16
	Width                   uint16
	Height                  uint16
	BitsPerPixel            byte
	ImageDescriptor         byte
}

// MarshalBinary encodes the header into its 18 byte form
func (h Header) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Grow(HeaderSize)
	if err := binary.Write(b, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalBinary decodes the header from the first 18 bytes of b
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return &BoundsError{Offset: 0, Length: HeaderSize, Size: int64(len(b))}
	}
	return binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, h)
}

// Validate checks the pixel depth can be handled as whole byte groups.
// Headers without image data are always valid.
func (h Header) Validate() error {
	if h.ImageType == NoImage {
		return nil
	}
	if h.BitsPerPixel == 0 || h.BitsPerPixel%8 != 0 || h.BitsPerPixel/8 > maxPixel {
		return ErrBitsPerPixel
	}
	return nil
}

// ColorMapOffset returns the offset of the color map, directly after the
// identification block.
func (h Header) ColorMapOffset() int64 {
	return HeaderSize + int64(h.IDLength)
}

// ColorMapSize returns the size of the color map in bytes.
func (h Header) ColorMapSize() int64 {
	return int64(h.ColorMapEntrySize) * int64(h.ColorMapLength) / 8
}

// ImageDataOffset returns the offset of the first byte of pixel data.
func (h Header) ImageDataOffset() int64 {
	return h.ColorMapOffset() + h.ColorMapSize()
}

// PixelBytes returns the width of one pixel group.
func (h Header) PixelBytes() int {
	return int(h.BitsPerPixel) / 8
}

// PixelCount returns width * height.
func (h Header) PixelCount() int64 {
	return int64(h.Width) * int64(h.Height)
}

// ImageSize returns the size of the uncompressed pixel data.
func (h Header) ImageSize() int64 {
	return h.PixelCount() * int64(h.PixelBytes())
}

// AlphaBits returns the number of attribute bits per pixel.
func (h Header) AlphaBits() int {
	return int(h.ImageDescriptor & 0x0f)
}

// Origin returns the OriginRight and OriginTop bits of the descriptor.
func (h Header) Origin() byte {
	return h.ImageDescriptor & (OriginRight | OriginTop)
}
