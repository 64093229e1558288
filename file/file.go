/*
Package file opens TGA files on disk as a tga.Source.

Plain files are either memory mapped, giving a zero-copy source, or read on
demand through the file's ReadAt method. Files with a .zst extension are
decompressed into memory first. Create does the reverse for output files.
*/
package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/tga"
	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
)

// Ext is the extension of zstd-compressed files.
const Ext = ".zst"

// File is an open TGA file.
type File struct {
	tga.Source

	f *os.File
	m mmap.MMap
}

// IsCompressed reports whether name has the zstd extension.
func IsCompressed(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

// Open opens the named file. If useMmap is set the file is memory mapped
// where possible, otherwise reads go through the file.
func Open(name string, useMmap bool) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	if IsCompressed(name) {
		defer f.Close()

		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()

		b, err := ioutil.ReadAll(dec)
		if err != nil {
			return nil, err
		}
		return &File{Source: tga.NewBytesSource(b)}, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	// Empty files can't be mapped
	if useMmap && info.Size() > 0 {
		if m, err := mmap.Map(f, mmap.RDONLY, 0); err == nil {
			return &File{Source: tga.NewBytesSource(m), f: f, m: m}, nil
		}
	}

	return &File{Source: tga.NewReaderAtSource(f, info.Size()), f: f}, nil
}

// Close unmaps and closes the file.
func (f *File) Close() error {
	if f.m != nil {
		if err := f.m.Unmap(); err != nil {
			return err
		}
		f.m = nil
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

type compressedWriter struct {
	*zstd.Encoder
	f      *os.File
	closed bool
}

func (w *compressedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.Encoder.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Create creates the named file, compressing anything written to it if the
// name has the zstd extension.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	if !IsCompressed(name) {
		return f, nil
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &compressedWriter{Encoder: enc, f: f}, nil
}
