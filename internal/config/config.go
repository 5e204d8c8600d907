// Package config loads the recorder configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/handset/internal/detector"
	"github.com/ayusman/handset/internal/session"
	"gopkg.in/yaml.v3"
)

// Config represents the complete recorder configuration
type Config struct {
	Labels              []string        `yaml:"labels"`
	SequenceCount       int             `yaml:"sequence_count"`
	FramesPerSequence   int             `yaml:"frames_per_sequence"`
	PrimingTicks        int             `yaml:"priming_ticks"`
	PrimingTickInterval time.Duration   `yaml:"priming_tick_interval"` // e.g. "1s"
	DataRoot            string          `yaml:"data_root"`
	Mirror              bool            `yaml:"mirror"`
	ManifestPath        string          `yaml:"manifest_path"` // empty disables the manifest
	Camera              CameraConfig    `yaml:"camera"`
	Display             DisplayConfig   `yaml:"display"`
	Detector            detector.Config `yaml:"detector"`
	LogFormat           string          `yaml:"log_format"` // text, json
}

// CameraConfig contains capture device settings
type CameraConfig struct {
	ID     int `yaml:"id"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// DisplayConfig contains preview window settings
type DisplayConfig struct {
	Headless bool   `yaml:"headless"`
	Tray     bool   `yaml:"tray"`
	Title    string `yaml:"title"`
	StopKey  string `yaml:"stop_key"` // single character, default "q"
}

// Default returns the configuration used when no file is given: two
// labels, 60 sequences of 30 frames each, a five second countdown.
func Default() *Config {
	return &Config{
		Labels:              []string{"hola", "mucho gusto"},
		SequenceCount:       60,
		FramesPerSequence:   30,
		PrimingTicks:        session.DefaultPrimingTicks,
		PrimingTickInterval: session.DefaultPrimingInterval,
		DataRoot:            "data",
		Mirror:              true,
		ManifestPath:        DefaultManifestPath(),
		Camera: CameraConfig{
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Display: DisplayConfig{
			Title:   "handset",
			StopKey: "q",
		},
		Detector:  detector.DefaultConfig(),
		LogFormat: "text",
	}
}

// DefaultManifestPath returns ~/.handset/handset.db, or "" when the home
// directory is unknown.
func DefaultManifestPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".handset", "handset.db")
}

// Load reads and parses a YAML configuration file. Keys missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Session returns the session configuration described by cfg.
func (c *Config) Session() session.Config {
	return session.Config{
		Labels:            append([]string(nil), c.Labels...),
		SequenceCount:     c.SequenceCount,
		FramesPerSequence: c.FramesPerSequence,
		PrimingTicks:      c.PrimingTicks,
		PrimingInterval:   c.PrimingTickInterval,
		DataRoot:          c.DataRoot,
		Mirror:            c.Mirror,
	}
}

// StopKey returns the configured stop key as a rune.
func (c *Config) StopKey() rune {
	for _, r := range c.Display.StopKey {
		return r
	}
	return 0
}
