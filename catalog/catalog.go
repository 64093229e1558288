/*
Package catalog maintains a sqlite index of the TGA files found under a
directory tree, recording the header of each file, how many pixels could
actually be decoded and a digest of the decoded pixels. It can be used to
find truncated files and duplicate images.
*/
package catalog

import (
	"log"
	"path/filepath"
)

// Catalog is the index of TGA files.
type Catalog struct {
	db      *imageDB
	useMmap bool
	logger  *log.Logger
}

// New opens or creates the catalog database in file. Files are memory mapped
// during scans if useMmap is set.
func New(file string, useMmap bool, logger *log.Logger) (*Catalog, error) {
	db, err := newImageDB(file)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		db:      db,
		useMmap: useMmap,
		logger:  logger,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Lookup returns the entry for the file at path, or nil if there isn't one.
func (c *Catalog) Lookup(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return c.db.lookup(abs)
}

// Duplicates returns groups of paths whose images have identical geometry
// and pixels.
func (c *Catalog) Duplicates() ([][]string, error) {
	return c.db.duplicates()
}

// Truncated returns the entries that decoded fewer pixels than their
// dimensions require.
func (c *Catalog) Truncated() ([]Entry, error) {
	return c.db.truncated()
}
