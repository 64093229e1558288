package image

import (
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/bodgit/tga"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Expand a 5-bit channel to 8 bits
func expand5(v uint16) uint8 {
	c := uint8(v & 0x1f)
	return c<<3 | c>>2
}

type decoder struct {
	r      *tga.Reader
	header tga.Header

	image image.Image
	model color.Model
}

func (d *decoder) decode(src tga.Source, configOnly bool) error {
	r, err := tga.NewReader(src)
	if err != nil {
		return err
	}
	d.r = r
	d.header = r.Header()

	switch d.header.ImageType {
	case tga.TrueColorRaw, tga.TrueColorRLE, tga.MonochromeRaw, tga.MonochromeRLE:
	default:
		return ErrUnsupported
	}

	d.model = color.NRGBAModel
	if d.header.PixelBytes() == 1 {
		d.model = color.GrayModel
	}

	if configOnly {
		return nil
	}

	return d.readPixels()
}

func (d *decoder) nrgba(p []byte) color.NRGBA {
	alpha := d.header.AlphaBits() > 0

	switch len(p) {
	case 2:
		// Packed as ARRRRRGG GGGBBBBB, little-endian
		v := uint16(p[0]) | uint16(p[1])<<8
		c := color.NRGBA{expand5(v >> 10), expand5(v >> 5), expand5(v), 0xff}
		if alpha && v&0x8000 == 0 {
			c.A = 0
		}
		return c
	case 3:
		return color.NRGBA{p[2], p[1], p[0], 0xff}
	default:
		c := color.NRGBA{p[2], p[1], p[0], p[3]}
		if !alpha {
			c.A = 0xff
		}
		return c
	}
}

func (d *decoder) readPixels() error {
	width, height := int(d.header.Width), int(d.header.Height)
	rect := image.Rect(0, 0, width, height)

	var set func(x, y int, p []byte)
	if d.header.PixelBytes() == 1 {
		m := image.NewGray(rect)
		set = func(x, y int, p []byte) {
			m.Pix[m.PixOffset(x, y)] = p[0]
		}
		d.image = m
	} else {
		m := image.NewNRGBA(rect)
		set = func(x, y int, p []byte) {
			m.SetNRGBA(x, y, d.nrgba(p))
		}
		d.image = m
	}

	origin := d.header.Origin()
	var i int
	return d.r.Decode(func(p []byte) error {
		x, y := i%width, i/width
		if origin&tga.OriginRight != 0 {
			x = width - 1 - x
		}
		if origin&tga.OriginTop == 0 {
			y = height - 1 - y
		}
		set(x, y, p)
		i++

		return nil
	})
}

// DecodeSource decodes a TGA image from src. Pixels missing from a truncated
// file are left as zero.
func DecodeSource(src tga.Source) (image.Image, error) {
	var d decoder
	if err := d.decode(src, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// Decode reads a TGA image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeSource(tga.NewBytesSource(b))
}

// DecodeConfig returns the color model and dimensions of a TGA image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var tmp [tga.HeaderSize]byte
	if err := readFull(r, tmp[:]); err != nil {
		return image.Config{}, err
	}

	var d decoder
	if err := d.decode(tga.NewBytesSource(tmp[:]), true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.model,
		Width:      int(d.header.Width),
		Height:     int(d.header.Height),
	}, nil
}
