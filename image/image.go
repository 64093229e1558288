/*
Package image implements a TGA image decoder and encoder on top of package
github.com/bodgit/tga.

Truecolor and monochrome images, both uncompressed and run-length encoded,
are supported. Pixels of 8 bits decode as grayscale, 16 bit pixels are
treated as 5 bits per channel with an optional attribute bit, and 24 and 32
bit pixels are stored in blue, green, red (and alpha) order. The origin bits
of the image descriptor are honoured, by default the first row stored is the
bottom of the image.

Images are always encoded as 24 bit pixels, or as 32 bit pixels with an 8 bit
alpha channel if the image isn't opaque.
*/
package image

import "errors"

// ErrUnsupported is returned for image types that can't be decoded into an
// image.Image, currently color-mapped images and those without pixel data.
var ErrUnsupported = errors.New("tga: unsupported image type")

const alphaBits = 8
