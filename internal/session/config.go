package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ayusman/handset/internal/dataset"
)

// Defaults for the priming countdown.
const (
	DefaultPrimingTicks    = 5
	DefaultPrimingInterval = time.Second
)

// Config describes one collection run.
type Config struct {
	// Labels are recorded in this order.
	Labels []string
	// SequenceCount is the number of sequences recorded per label.
	SequenceCount int
	// FramesPerSequence is the number of frames recorded per sequence.
	FramesPerSequence int
	// PrimingTicks is the length of the countdown before each sequence.
	// Zero means DefaultPrimingTicks.
	PrimingTicks int
	// PrimingInterval is the wait after each countdown tick. Zero means
	// DefaultPrimingInterval.
	PrimingInterval time.Duration
	// DataRoot is the dataset root directory. New makes it absolute.
	DataRoot string
	// Mirror flips every frame horizontally before detection and display.
	Mirror bool
}

// TotalFrames returns the number of frames a complete run writes.
func (c Config) TotalFrames() int {
	return len(c.Labels) * c.SequenceCount * c.FramesPerSequence
}

// withDefaults validates c and fills zero-valued optional fields.
func (c Config) withDefaults() (Config, error) {
	if len(c.Labels) == 0 {
		return c, fmt.Errorf("%w: no labels", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, label := range c.Labels {
		if err := dataset.ValidateLabel(label); err != nil {
			return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if seen[label] {
			return c, fmt.Errorf("%w: duplicate label %q", ErrInvalidConfig, label)
		}
		seen[label] = true
	}
	if c.SequenceCount <= 0 {
		return c, fmt.Errorf("%w: sequence count must be > 0, got %d", ErrInvalidConfig, c.SequenceCount)
	}
	if c.FramesPerSequence <= 0 {
		return c, fmt.Errorf("%w: frames per sequence must be > 0, got %d", ErrInvalidConfig, c.FramesPerSequence)
	}
	if c.PrimingTicks < 0 {
		return c, fmt.Errorf("%w: priming ticks must not be negative, got %d", ErrInvalidConfig, c.PrimingTicks)
	}
	if c.PrimingInterval < 0 {
		return c, fmt.Errorf("%w: priming interval must not be negative", ErrInvalidConfig)
	}
	if c.DataRoot == "" {
		return c, fmt.Errorf("%w: data root is required", ErrInvalidConfig)
	}

	root, err := filepath.Abs(c.DataRoot)
	if err != nil {
		return c, fmt.Errorf("%w: data root %q: %w", ErrInvalidConfig, c.DataRoot, err)
	}
	c.DataRoot = root

	if c.PrimingTicks == 0 {
		c.PrimingTicks = DefaultPrimingTicks
	}
	if c.PrimingInterval == 0 {
		c.PrimingInterval = DefaultPrimingInterval
	}
	c.Labels = append([]string(nil), c.Labels...)
	return c, nil
}
