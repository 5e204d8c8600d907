// Package dataset maps (label, sequence, frame) triples onto the on-disk
// dataset layout and reads and writes keypoint files.
//
// Layout:
//
//	<root>/<label>/<sequence>/<frame>.npy
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FrameExt is the extension of every keypoint file.
const FrameExt = ".npy"

var (
	// ErrInvalidLabel is returned for labels that cannot be used as a single
	// directory name.
	ErrInvalidLabel = errors.New("invalid label")
	// ErrInvalidIndex is returned for negative sequence or frame indices.
	ErrInvalidIndex = errors.New("invalid index")
)

// Layout computes and materializes dataset paths under Root.
type Layout struct {
	Root string
}

// New creates a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: filepath.Clean(root)}
}

// ValidateLabel checks that label can be used as one path segment.
func ValidateLabel(label string) error {
	switch {
	case strings.TrimSpace(label) == "":
		return fmt.Errorf("%w: empty", ErrInvalidLabel)
	case label == "." || label == "..":
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	case strings.ContainsAny(label, `/\`) || strings.ContainsRune(label, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidLabel, label)
	}
	return nil
}

// SequenceDir returns the directory of a sequence. No I/O is performed.
func (l *Layout) SequenceDir(label string, sequence int) string {
	return filepath.Join(l.Root, label, strconv.Itoa(sequence))
}

// FramePath returns the keypoint file path of a frame. No I/O is performed.
func (l *Layout) FramePath(label string, sequence, frame int) string {
	return filepath.Join(l.SequenceDir(label, sequence), strconv.Itoa(frame)+FrameExt)
}

// EnsureSequenceDir creates the directory of a sequence if it is missing.
// An existing directory is not an error.
func (l *Layout) EnsureSequenceDir(label string, sequence int) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	if sequence < 0 {
		return "", fmt.Errorf("%w: sequence %d", ErrInvalidIndex, sequence)
	}

	dir := l.SequenceDir(label, sequence)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create sequence dir %s: %w", dir, err)
	}
	return dir, nil
}

// SequenceFrames returns the sorted frame indices present on disk for a
// sequence. A missing sequence directory yields no frames.
func (l *Layout) SequenceFrames(label string, sequence int) ([]int, error) {
	entries, err := os.ReadDir(l.SequenceDir(label, sequence))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var frames []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, FrameExt) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, FrameExt))
		if err != nil || n < 0 {
			continue
		}
		frames = append(frames, n)
	}
	sort.Ints(frames)
	return frames, nil
}

// Labels returns the label directories present under Root, sorted by name.
func (l *Layout) Labels() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var labels []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			labels = append(labels, e.Name())
		}
	}
	return labels, nil
}

// Sequences returns the sorted sequence indices present for a label.
func (l *Layout) Sequences(label string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, label))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var sequences []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		sequences = append(sequences, n)
	}
	sort.Ints(sequences)
	return sequences, nil
}
