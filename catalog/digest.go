package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bodgit/tga"
	"github.com/bodgit/tga/file"
	"github.com/cespare/xxhash/v2"
)

// ErrNoPixels is returned for files whose image type has no pixel data that
// can be decoded, such as color-mapped images. They can't be compared or
// checked for truncation so they aren't recorded.
var ErrNoPixels = errors.New("catalog: no decodable pixel data")

// Entry is the catalog record for one file.
type Entry struct {
	Path         string
	ImageType    tga.ImageType
	Width        int
	Height       int
	BitsPerPixel int
	Descriptor   byte
	// Pixels is the number of pixels that could be decoded
	Pixels int64
	// Digest is the xxhash64 of the geometry and decoded pixels
	Digest string
}

// Complete reports whether every pixel was decoded.
func (e *Entry) Complete() bool {
	return e.Pixels == int64(e.Width)*int64(e.Height)
}

func digestSource(src tga.Source) (*Entry, error) {
	r, err := tga.NewReader(src)
	if err != nil {
		return nil, err
	}
	h := r.Header()

	switch h.ImageType {
	case tga.TrueColorRaw, tga.TrueColorRLE, tga.MonochromeRaw, tga.MonochromeRLE:
	default:
		return nil, fmt.Errorf("%w for %s image", ErrNoPixels, h.ImageType)
	}

	d := xxhash.New()

	// Identical pixels in a different shape aren't the same image
	var tmp [5]byte
	binary.LittleEndian.PutUint16(tmp[0:], h.Width)
	binary.LittleEndian.PutUint16(tmp[2:], h.Height)
	tmp[4] = h.BitsPerPixel
	d.Write(tmp[:])

	var n int64
	if err := r.Decode(func(p []byte) error {
		n++
		_, err := d.Write(p)
		return err
	}); err != nil {
		return nil, err
	}

	return &Entry{
		ImageType:    h.ImageType,
		Width:        int(h.Width),
		Height:       int(h.Height),
		BitsPerPixel: int(h.BitsPerPixel),
		Descriptor:   h.ImageDescriptor,
		Pixels:       n,
		Digest:       fmt.Sprintf("%016X", d.Sum64()),
	}, nil
}

func digestFile(name string, useMmap bool) (*Entry, error) {
	f, err := file.Open(name, useMmap)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e, err := digestSource(f)
	if err != nil {
		return nil, err
	}
	e.Path = name

	return e, nil
}
