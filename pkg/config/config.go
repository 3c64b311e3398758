// Package config loads the optional dockgrade.yaml file that drives
// multi-image runs and CI gating.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "dockgrade.yaml"

// ImageEntry names one image to grade, with an optional Dockerfile for
// authoritative practice detection.
type ImageEntry struct {
	Tag        string `yaml:"tag"`
	Name       string `yaml:"name,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// DisplayName returns the label used in report output.
func (e ImageEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Tag
}

// Config is the parsed dockgrade.yaml.
type Config struct {
	Images []ImageEntry `yaml:"images"`

	// Output is the report file path; empty means stdout.
	Output string `yaml:"output,omitempty"`
	// Format is one of md, json, csv, term.
	Format string `yaml:"format,omitempty"`
	// FailBelow makes the run exit non-zero when any optimization score
	// falls under the gate. Zero disables the gate.
	FailBelow int `yaml:"fail_below,omitempty"`
	// TopCritical caps the critical vulnerability sample per image.
	TopCritical int `yaml:"top_critical,omitempty"`
	// SkipScan disables the vulnerability scanner for all images.
	SkipScan bool `yaml:"skip_scan,omitempty"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate catches typos before any image is pulled or scanned.
func (c *Config) Validate() error {
	if len(c.Images) == 0 {
		return fmt.Errorf("no images configured")
	}
	for i, img := range c.Images {
		if img.Tag == "" {
			return fmt.Errorf("images[%d]: tag is required", i)
		}
	}
	switch c.Format {
	case "", "md", "json", "csv", "term":
	default:
		return fmt.Errorf("unknown format %q (want md, json, csv or term)", c.Format)
	}
	if c.FailBelow < 0 || c.FailBelow > 100 {
		return fmt.Errorf("fail_below must be in [0,100], got %d", c.FailBelow)
	}
	return nil
}
