package tga

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMarshalBinary(t *testing.T) {
	h := Header{
		IDLength:                1,
		ColorMapType:            1,
		ImageType:               TrueColorRLE,
		ColorMapFirstEntryIndex: 0x0302,
		ColorMapLength:          0x0504,
		ColorMapEntrySize:       24,
		XOrigin:                 0x0706,
		YOrigin:                 0x0908,
		Width:                   0x0b0a,
		Height:                  0x0d0c,
		BitsPerPixel:            32,
		ImageDescriptor:         OriginTop | 8,
	}

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		1, 1, 10,
		0x02, 0x03, 0x04, 0x05, 24,
		0x06, 0x07, 0x08, 0x09,
		0x0a, 0x0b, 0x0c, 0x0d,
		32, 0x28,
	}, b)

	var got Header
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, h, got)
}

func TestHeaderUnmarshalShort(t *testing.T) {
	var h Header
	err := h.UnmarshalBinary(make([]byte, HeaderSize-1))

	var be *BoundsError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, int64(HeaderSize), be.Length)
	assert.Equal(t, int64(HeaderSize-1), be.Size)
}

func TestHeaderValidate(t *testing.T) {
	tables := []struct {
		name      string
		imageType ImageType
		bits      byte
		err       error
	}{
		{"none", NoImage, 0, nil},
		{"8 bits", MonochromeRaw, 8, nil},
		{"16 bits", TrueColorRaw, 16, nil},
		{"24 bits", TrueColorRLE, 24, nil},
		{"32 bits", TrueColorRLE, 32, nil},
		{"zero bits", TrueColorRaw, 0, ErrBitsPerPixel},
		{"15 bits", TrueColorRaw, 15, ErrBitsPerPixel},
		{"40 bits", TrueColorRaw, 40, ErrBitsPerPixel},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			h := Header{ImageType: table.imageType, BitsPerPixel: table.bits}
			assert.Equal(t, table.err, h.Validate())
		})
	}
}

func TestHeaderOffsets(t *testing.T) {
	h := Header{
		IDLength:          5,
		ColorMapType:      1,
		ColorMapLength:    16,
		ColorMapEntrySize: 24,
		Width:             3,
		Height:            7,
		BitsPerPixel:      24,
		ImageDescriptor:   OriginRight | OriginTop | 8,
	}

	assert.Equal(t, int64(23), h.ColorMapOffset())
	assert.Equal(t, int64(48), h.ColorMapSize())
	assert.Equal(t, int64(71), h.ImageDataOffset())
	assert.Equal(t, 3, h.PixelBytes())
	assert.Equal(t, int64(21), h.PixelCount())
	assert.Equal(t, int64(63), h.ImageSize())
	assert.Equal(t, 8, h.AlphaBits())
	assert.Equal(t, byte(OriginRight|OriginTop), h.Origin())
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "truecolor rle", TrueColorRLE.String())
	assert.Equal(t, "unknown(42)", ImageType(42).String())
	assert.True(t, MonochromeRLE.Compressed())
	assert.False(t, TrueColorRaw.Compressed())
}

func TestHeaderCopyAccessors(t *testing.T) {
	w, err := NewWriter(new(bytes.Buffer), 3, 2, 32, RLE)
	require.NoError(t, err)
	assert.Equal(t, int64(24), w.Header().ImageSize())
	assert.Equal(t, 8, w.Header().AlphaBits())
	assert.NoError(t, w.Header().Validate())

	b := makeFile(Header{ImageType: MonochromeRaw, Width: 2, Height: 2, BitsPerPixel: 8, ImageDescriptor: OriginTop}, make([]byte, 4))
	r, err := NewReader(NewBytesSource(b))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Header().PixelBytes())
	assert.Equal(t, int64(4), r.Header().PixelCount())
	assert.Equal(t, int64(HeaderSize), r.Header().ImageDataOffset())
	assert.Equal(t, byte(OriginTop), r.Header().Origin())
}
