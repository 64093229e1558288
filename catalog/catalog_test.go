package catalog

import (
	"bytes"
	"errors"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/tga"
	"github.com/bodgit/tga/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTGA(t *testing.T, width, height int, c tga.Compression, fill byte) []byte {
	t.Helper()

	pixels := make([]byte, width*height*3)
	for i := range pixels {
		pixels[i] = fill + byte(i/7)
	}

	b := new(bytes.Buffer)
	w, err := tga.NewWriter(b, width, height, 24, c)
	require.NoError(t, err)
	require.NoError(t, w.Encode(tga.SliceProducer(pixels, 0)))
	return b.Bytes()
}

func writeFile(t *testing.T, name string, b []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
	require.NoError(t, ioutil.WriteFile(name, b, 0644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "images")

	a := encodeTGA(t, 8, 4, tga.None, 0)
	writeFile(t, filepath.Join(root, "a.tga"), a)
	// Same pixels, different compression
	writeFile(t, filepath.Join(root, "sub", "b.TGA"), encodeTGA(t, 8, 4, tga.RLE, 0))
	// Same pixels, different shape
	writeFile(t, filepath.Join(root, "sub", "c.tga"), encodeTGA(t, 4, 8, tga.None, 0))
	writeFile(t, filepath.Join(root, "truncated.tga"), a[:len(a)-10])
	writeFile(t, filepath.Join(root, "broken.tga"), []byte{1, 2, 3})
	writeFile(t, filepath.Join(root, ".hidden", "d.tga"), a)
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("not an image"))

	w, err := file.Create(filepath.Join(root, "e.tga.zst"))
	require.NoError(t, err)
	_, err = w.Write(encodeTGA(t, 3, 3, tga.RLE, 100))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, useMmap := range []bool{true, false} {
		c, err := New(filepath.Join(dir, "catalog.db"), useMmap, log.New(ioutil.Discard, "", 0))
		require.NoError(t, err)

		require.NoError(t, c.Scan(root, 3))

		e, err := c.Lookup(filepath.Join(root, "a.tga"))
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, tga.TrueColorRaw, e.ImageType)
		assert.Equal(t, 8, e.Width)
		assert.Equal(t, 4, e.Height)
		assert.Equal(t, 24, e.BitsPerPixel)
		assert.Equal(t, int64(32), e.Pixels)
		assert.True(t, e.Complete())
		assert.Len(t, e.Digest, 16)

		e, err = c.Lookup(filepath.Join(root, "e.tga.zst"))
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, tga.TrueColorRLE, e.ImageType)
		assert.Equal(t, int64(9), e.Pixels)

		for _, missing := range []string{"broken.tga", filepath.Join(".hidden", "d.tga"), "notes.txt"} {
			e, err = c.Lookup(filepath.Join(root, missing))
			require.NoError(t, err)
			assert.Nil(t, e, missing)
		}

		truncated, err := c.Truncated()
		require.NoError(t, err)
		require.Len(t, truncated, 1)
		assert.Equal(t, filepath.Join(root, "truncated.tga"), truncated[0].Path)
		assert.Equal(t, int64(28), truncated[0].Pixels)

		dupes, err := c.Duplicates()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{filepath.Join(root, "a.tga"), filepath.Join(root, "sub", "b.TGA")}}, dupes)

		require.NoError(t, c.Close())
	}
}

func colorMapped(index byte) []byte {
	h := tga.Header{
		ColorMapType:      1,
		ImageType:         tga.ColorMappedRaw,
		ColorMapLength:    2,
		ColorMapEntrySize: 24,
		Width:             2,
		Height:            1,
		BitsPerPixel:      8,
	}
	b, err := h.MarshalBinary()
	if err != nil {
		panic(err)
	}
	// Black and white palette
	b = append(b, 0, 0, 0, 0xff, 0xff, 0xff)
	return append(b, index, index)
}

func TestScanSkipsColorMapped(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "images")

	writeFile(t, filepath.Join(root, "black.tga"), colorMapped(0))
	writeFile(t, filepath.Join(root, "white.tga"), colorMapped(1))
	noImage, err := tga.Header{ImageType: tga.NoImage}.MarshalBinary()
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "none.tga"), noImage)
	writeFile(t, filepath.Join(root, "a.tga"), encodeTGA(t, 2, 1, tga.None, 0))

	logs := new(bytes.Buffer)
	c, err := New(filepath.Join(dir, "catalog.db"), true, log.New(logs, "", 0))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Scan(root, 2))

	for _, name := range []string{"black.tga", "white.tga", "none.tga"} {
		e, err := c.Lookup(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Nil(t, e, name)
		assert.Contains(t, logs.String(), name)
	}
	assert.Contains(t, logs.String(), ErrNoPixels.Error())

	e, err := c.Lookup(filepath.Join(root, "a.tga"))
	require.NoError(t, err)
	assert.NotNil(t, e)

	dupes, err := c.Duplicates()
	require.NoError(t, err)
	assert.Empty(t, dupes)

	truncated, err := c.Truncated()
	require.NoError(t, err)
	assert.Empty(t, truncated)
}

func TestDigestColorMapped(t *testing.T) {
	_, err := digestSource(tga.NewBytesSource(colorMapped(0)))
	assert.True(t, errors.Is(err, ErrNoPixels))
}

func TestScanMissing(t *testing.T) {
	dir := t.TempDir()

	c, err := New(filepath.Join(dir, "catalog.db"), true, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.Scan(filepath.Join(dir, "missing"), 2))
}

func TestIsTGA(t *testing.T) {
	assert.True(t, isTGA("a.tga"))
	assert.True(t, isTGA("a.TGA"))
	assert.True(t, isTGA("a.tga.zst"))
	assert.False(t, isTGA("a.zst"))
	assert.False(t, isTGA("a.png"))
}
