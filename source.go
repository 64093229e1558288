package tga

import "io"

// Source provides the bytes of a TGA file to a Reader.
//
// Slice returns exactly n bytes starting at off. Implementations may copy
// into scratch, which is at least n bytes long, or return a view of their
// own storage; either way the result is only valid until the next call. A
// range that isn't wholly within [0, Size()) fails with a *BoundsError.
type Source interface {
	Size() int64
	Slice(off, n int64, scratch []byte) ([]byte, error)
}

func checkBounds(off, n, size int64) error {
	if off < 0 || n < 0 || off > size || n > size-off {
		return &BoundsError{Offset: off, Length: n, Size: size}
	}
	return nil
}

type readerAtSource struct {
	r    io.ReaderAt
	size int64
}

// NewReaderAtSource returns a Source that copies each read from r into the
// caller's buffer. size is the number of bytes available from r, for an
// *os.File this is the size reported by Stat.
func NewReaderAtSource(r io.ReaderAt, size int64) Source {
	return &readerAtSource{r: r, size: size}
}

func (s *readerAtSource) Size() int64 {
	return s.size
}

func (s *readerAtSource) Slice(off, n int64, scratch []byte) ([]byte, error) {
	if err := checkBounds(off, n, s.size); err != nil {
		return nil, err
	}
	b := scratch[:n]
	m, err := s.r.ReadAt(b, off)
	switch {
	case m == len(b):
		// ReadAt may return io.EOF alongside a full read
		return b, nil
	case err == io.EOF, err == nil:
		return nil, io.ErrUnexpectedEOF
	default:
		return nil, err
	}
}

// BytesSource is a Source over a contiguous region of memory, such as a
// memory-mapped file. Reads return sub-slices of the region without copying.
type BytesSource struct {
	b []byte
}

// NewBytesSource returns a BytesSource over b.
func NewBytesSource(b []byte) *BytesSource {
	return &BytesSource{b: b}
}

// Bytes returns the whole region.
func (s *BytesSource) Bytes() []byte {
	return s.b
}

// Size returns the length of the region.
func (s *BytesSource) Size() int64 {
	return int64(len(s.b))
}

// Slice returns b[off:off+n], scratch is unused.
func (s *BytesSource) Slice(off, n int64, _ []byte) ([]byte, error) {
	if err := checkBounds(off, n, int64(len(s.b))); err != nil {
		return nil, err
	}
	return s.b[off : off+n : off+n], nil
}
