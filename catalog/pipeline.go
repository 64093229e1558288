package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/tga/file"
)

func isTGA(name string) bool {
	if file.IsCompressed(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.EqualFold(filepath.Ext(name), ".tga")
}

func (c *Catalog) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(name string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && name != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !isTGA(name) {
				return nil
			}

			select {
			case out <- name:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Catalog) fileWorker(ctx context.Context, in <-chan string) (<-chan *Entry, <-chan error, error) {
	out := make(chan *Entry)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for name := range in {
			e, err := digestFile(name, c.useMmap)
			if err != nil {
				// A broken file shouldn't stop the scan
				c.logger.Printf("Skipping \"%s\": %v\n", name, err)
				continue
			}
			if !e.Complete() {
				c.logger.Printf("Truncated \"%s\", %d of %d pixels\n", name, e.Pixels, e.Width*e.Height)
			}

			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

func (c *Catalog) recorder(ctx context.Context, in <-chan *Entry) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for e := range in {
			if err := c.db.record(e); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func mergeEntries(ctx context.Context, cs ...<-chan *Entry) <-chan *Entry {
	var wg sync.WaitGroup
	out := make(chan *Entry)
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan *Entry) {
			defer wg.Done()
			for e := range c {
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree at path and records every TGA file found,
// using the given number of concurrent workers to decode them. Files that
// can't be decoded, including color-mapped images, are logged and skipped.
func (c *Catalog) Scan(path string, workers int) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = 1
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	var entries []<-chan *Entry
	for i := 0; i < workers; i++ {
		out, errc, err := c.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		entries = append(entries, out)
		errcList = append(errcList, errc)
	}

	errc, err = c.recorder(ctx, mergeEntries(ctx, entries...))
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	return waitForPipeline(errcList...)
}
