package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/ayusman/handset/internal/dataset"
	"github.com/ayusman/handset/internal/session"
)

// Validate checks if the configuration is valid and fills defaults for
// optional values left empty.
func Validate(cfg *Config) error {
	if len(cfg.Labels) == 0 {
		return fmt.Errorf("labels must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Labels))
	for _, label := range cfg.Labels {
		if err := dataset.ValidateLabel(label); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		if seen[label] {
			return fmt.Errorf("labels: duplicate label %q", label)
		}
		seen[label] = true
	}

	if cfg.SequenceCount <= 0 {
		return fmt.Errorf("sequence_count must be > 0")
	}
	if cfg.FramesPerSequence <= 0 {
		return fmt.Errorf("frames_per_sequence must be > 0")
	}

	if cfg.PrimingTicks < 0 {
		return fmt.Errorf("priming_ticks must not be negative")
	}
	if cfg.PrimingTicks == 0 {
		cfg.PrimingTicks = session.DefaultPrimingTicks
	}
	if cfg.PrimingTickInterval < 0 {
		return fmt.Errorf("priming_tick_interval must not be negative")
	}
	if cfg.PrimingTickInterval == 0 {
		cfg.PrimingTickInterval = session.DefaultPrimingInterval
	}

	if cfg.DataRoot == "" {
		return fmt.Errorf("data_root is required")
	}

	if cfg.Camera.ID < 0 {
		return fmt.Errorf("camera.id must not be negative")
	}
	if cfg.Camera.Width < 0 || cfg.Camera.Height < 0 {
		return fmt.Errorf("camera.width and camera.height must not be negative")
	}
	if cfg.Camera.FPS < 0 {
		return fmt.Errorf("camera.fps must not be negative")
	}

	if cfg.Display.StopKey == "" {
		cfg.Display.StopKey = "q"
	}
	if utf8.RuneCountInString(cfg.Display.StopKey) != 1 {
		return fmt.Errorf("display.stop_key must be a single character, got %q", cfg.Display.StopKey)
	}
	if cfg.Display.Title == "" {
		cfg.Display.Title = "handset"
	}

	if cfg.Detector.MaxHands <= 0 {
		cfg.Detector.MaxHands = 2
	}
	if c := cfg.Detector.MinConfidence; c < 0 || c > 1 {
		return fmt.Errorf("detector.min_confidence must be within [0, 1], got %v", c)
	}
	if c := cfg.Detector.MinTrackingConf; c < 0 || c > 1 {
		return fmt.Errorf("detector.min_tracking_confidence must be within [0, 1], got %v", c)
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", cfg.LogFormat)
	}

	return nil
}
