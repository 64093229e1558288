/*
Package config loads the defaults used by the tga command from a YAML file.
*/
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/bodgit/tga"
	"gopkg.in/yaml.v2"
)

// Config holds the settings that can be read from the configuration file.
type Config struct {
	Database    string `yaml:"database"`
	Workers     int    `yaml:"workers"`
	Compression string `yaml:"compression"`
	Colors      int    `yaml:"colors"`
	Mmap        bool   `yaml:"mmap"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Workers:     10,
		Compression: tga.None.String(),
		Mmap:        true,
	}
}

// Load reads the configuration in path on top of the defaults. A missing
// file isn't an error.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}

	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, fmt.Errorf("config: unable to parse %s: %w", path, err)
	}

	if _, err := tga.ParseCompression(c.Compression); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if c.Workers < 1 {
		return nil, fmt.Errorf("config: workers must be at least 1")
	}
	if c.Colors < 0 {
		return nil, fmt.Errorf("config: colors can't be negative")
	}

	return c, nil
}

// CompressionMode returns the parsed compression setting.
func (c *Config) CompressionMode() tga.Compression {
	m, _ := tga.ParseCompression(c.Compression)
	return m
}
