package image

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/bodgit/tga"
	"github.com/ericpauley/go-quantize/quantize"
)

// Options are the encoding parameters.
type Options struct {
	// Compression selects uncompressed or run-length encoded pixel data.
	Compression tga.Compression
	// Colors, if greater than zero, reduces the image to at most this
	// many colors before encoding which produces longer runs.
	Colors int
}

type encoder struct {
	w      io.Writer
	m      image.Image
	opaque bool

	row []byte
}

func opaque(m image.Image) bool {
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// Reduce the image to a palette of at most n colors
func reduceColors(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// Rows are produced bottom to top, which matches a descriptor without the
// top origin bit set
func (e *encoder) pixels() func() ([]byte, error) {
	b := e.m.Bounds()
	y := b.Max.Y
	return func() ([]byte, error) {
		if y == b.Min.Y {
			return nil, nil
		}
		y--

		e.row = e.row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(e.m.At(x, y)).(color.NRGBA)
			e.row = append(e.row, c.B, c.G, c.R)
			if !e.opaque {
				e.row = append(e.row, c.A)
			}
		}
		return e.row, nil
	}
}

func (e *encoder) encode(c tga.Compression) error {
	b := e.m.Bounds()

	bits := 24
	if !e.opaque {
		bits += alphaBits
	}

	w, err := tga.NewWriter(e.w, b.Dx(), b.Dy(), bits, c)
	if err != nil {
		return err
	}

	return w.Encode(e.pixels())
}

// Encode writes the Image m to w in TGA format. Default parameters are used
// if a nil *Options is passed.
func Encode(w io.Writer, m image.Image, o *Options) error {
	if o == nil {
		o = &Options{}
	}

	if o.Colors > 0 {
		m = reduceColors(m, o.Colors)
	}

	e := encoder{
		w:      w,
		m:      m,
		opaque: opaque(m),
	}

	return e.encode(o.Compression)
}
