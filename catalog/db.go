package catalog

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/tga"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
)

type imageDB struct {
	db *sql.DB
}

func newImageDB(file string) (*imageDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, image_type INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, bits_per_pixel INTEGER NOT NULL, descriptor INTEGER NOT NULL, pixels INTEGER NOT NULL, digest TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS image_digest ON image (digest)"); err != nil {
		db.Close()
		return nil, err
	}

	return &imageDB{
		db: db,
	}, nil
}

func (db *imageDB) Close() error {
	return db.db.Close()
}

func (db *imageDB) record(e *Entry) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO image (path, image_type, width, height, bits_per_pixel, descriptor, pixels, digest) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", e.Path, int(e.ImageType), e.Width, e.Height, e.BitsPerPixel, int(e.Descriptor), e.Pixels, e.Digest); err != nil {
		return err
	}
	return nil
}

type scanner interface {
	Scan(...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var imageType, descriptor int
	if err := s.Scan(&e.Path, &imageType, &e.Width, &e.Height, &e.BitsPerPixel, &descriptor, &e.Pixels, &e.Digest); err != nil {
		return nil, err
	}
	e.ImageType = tga.ImageType(imageType)
	e.Descriptor = byte(descriptor)
	return &e, nil
}

const entryColumns = "path, image_type, width, height, bits_per_pixel, descriptor, pixels, digest"

func (db *imageDB) lookup(path string) (*Entry, error) {
	e, err := scanEntry(db.db.QueryRow("SELECT "+entryColumns+" FROM image WHERE path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

func (db *imageDB) truncated() ([]Entry, error) {
	rows, err := db.db.Query("SELECT " + entryColumns + " FROM image WHERE pixels < width * height ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (db *imageDB) duplicates() ([][]string, error) {
	rows, err := db.db.Query("SELECT digest, path FROM image WHERE digest IN (SELECT digest FROM image GROUP BY digest HAVING COUNT(*) > 1) ORDER BY digest, path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups [][]string
	var last string
	for rows.Next() {
		var digest, path string
		if err := rows.Scan(&digest, &path); err != nil {
			return nil, err
		}
		if len(groups) == 0 || digest != last {
			groups = append(groups, nil)
			last = digest
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], path)
	}
	return groups, rows.Err()
}
