package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/tga"
	"github.com/bodgit/tga/catalog"
	"github.com/bodgit/tga/config"
	"github.com/bodgit/tga/file"
	tgaimage "github.com/bodgit/tga/image"
	"github.com/urfave/cli/v2"
)

const (
	defaultDB     = "tga.db"
	defaultConfig = ".tga.yaml"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// Configuration file values, overridden by any flags that were set
func settings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") || cfg.Database == "" {
		cfg.Database = c.String("db")
	}
	if c.IsSet("no-mmap") {
		cfg.Mmap = !c.Bool("no-mmap")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("compression") {
		if _, err := tga.ParseCompression(c.String("compression")); err != nil {
			return nil, err
		}
		cfg.Compression = c.String("compression")
	}
	if c.IsSet("colors") {
		cfg.Colors = c.Int("colors")
	}

	return cfg, nil
}

// Swap the extension of in, looking through any compression extension
func outputName(in, ext string) string {
	base := in
	if file.IsCompressed(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func info(c *cli.Context, cfg *config.Config) error {
	f, err := file.Open(c.Args().First(), cfg.Mmap)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := tga.NewReader(f)
	if err != nil {
		return err
	}
	h := r.Header()

	var n int64
	if err := r.Decode(func([]byte) error {
		n++
		return nil
	}); err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Image type:       %d (%s)\n", h.ImageType, h.ImageType)
	fmt.Fprintf(w, "Dimensions:       %dx%d\n", h.Width, h.Height)
	fmt.Fprintf(w, "Bits per pixel:   %d\n", h.BitsPerPixel)
	fmt.Fprintf(w, "Alpha bits:       %d\n", h.AlphaBits())
	fmt.Fprintf(w, "Origin:           %#02x\n", h.Origin())
	fmt.Fprintf(w, "Color map:        %d entries of %d bits at offset %d\n", h.ColorMapLength, h.ColorMapEntrySize, h.ColorMapOffset())
	fmt.Fprintf(w, "Image data:       offset %d\n", h.ImageDataOffset())
	fmt.Fprintf(w, "Pixels decoded:   %d of %d\n", n, h.PixelCount())

	return nil
}

func decode(c *cli.Context, cfg *config.Config) error {
	in := c.Args().First()
	out := c.Args().Get(1)
	if out == "" {
		out = outputName(in, ".png")
	}

	f, err := file.Open(in, cfg.Mmap)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tgaimage.DecodeSource(f)
	if err != nil {
		return err
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := png.Encode(w, m); err != nil {
		return err
	}

	return w.Close()
}

func encode(c *cli.Context, cfg *config.Config) error {
	in := c.Args().First()
	out := c.Args().Get(1)
	if out == "" {
		out = outputName(in, ".tga")
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	w, err := file.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := tgaimage.Encode(w, m, &tgaimage.Options{
		Compression: cfg.CompressionMode(),
		Colors:      cfg.Colors,
	}); err != nil {
		return err
	}

	return w.Close()
}

func scan(c *cli.Context, cfg *config.Config) error {
	m, err := catalog.New(cfg.Database, cfg.Mmap, newLogger(c))
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Scan(c.Args().First(), cfg.Workers)
}

func dupes(c *cli.Context, cfg *config.Config) error {
	m, err := catalog.New(cfg.Database, cfg.Mmap, newLogger(c))
	if err != nil {
		return err
	}
	defer m.Close()

	groups, err := m.Duplicates()
	if err != nil {
		return err
	}
	for _, group := range groups {
		fmt.Fprintln(c.App.Writer, strings.Join(group, "\t"))
	}

	truncated, err := m.Truncated()
	if err != nil {
		return err
	}
	for _, e := range truncated {
		fmt.Fprintf(c.App.Writer, "truncated\t%s\t%d/%d\n", e.Path, e.Pixels, e.Width*e.Height)
	}

	return nil
}

// Wrap an action with argument checking and configuration loading
func action(args int, fn func(*cli.Context, *config.Config) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < args {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		cfg, err := settings(c)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		if err := fn(c, cfg); err != nil {
			return cli.NewExitError(err, 1)
		}

		return nil
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "tga"
	app.Usage = "Truevision TGA image utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = cwd
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"TGA_CONFIG"},
			Value:   filepath.Join(home, defaultConfig),
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"TGA_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:  "no-mmap",
			Usage: "read files instead of memory mapping them",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Print the header of a TGA file",
			Description: "",
			ArgsUsage:   "FILE",
			Action:      action(1, info),
		},
		{
			Name:        "decode",
			Usage:       "Convert a TGA file to PNG",
			Description: "",
			ArgsUsage:   "FILE [OUTPUT]",
			Action:      action(1, decode),
		},
		{
			Name:        "encode",
			Usage:       "Convert a PNG, JPEG or GIF image to TGA",
			Description: "Output files ending in .zst are compressed with zstd.",
			ArgsUsage:   "IMAGE [OUTPUT]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "compression",
					Value: tga.None.String(),
					Usage: "pixel data compression, none or rle",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce the image to at most this many colors",
				},
			},
			Action: action(1, encode),
		},
		{
			Name:        "scan",
			Usage:       "Scan a directory tree and record TGA files in the catalog",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of files to decode concurrently",
				},
			},
			Action: action(1, scan),
		},
		{
			Name:        "dupes",
			Usage:       "List duplicate and truncated images in the catalog",
			Description: "",
			Action:      action(0, dupes),
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
