package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/handset/internal/keypoints"
	"github.com/sbinet/npyio"
)

// ErrVectorLength is returned when a keypoint file does not hold exactly
// keypoints.Size values.
var ErrVectorLength = errors.New("keypoint vector length mismatch")

// WriteKeypoints stores v at path as a 1-D float64 NumPy array, replacing
// any existing file. The data is written to a temporary file in the same
// directory and renamed into place.
func (l *Layout) WriteKeypoints(path string, v keypoints.Vector) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".frame-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if err := npyio.Write(f, v[:]); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode keypoints: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// ReadKeypoints loads a keypoint file written by WriteKeypoints.
func ReadKeypoints(path string) (keypoints.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return keypoints.Vector{}, err
	}
	defer f.Close()

	var values []float64
	if err := npyio.Read(f, &values); err != nil {
		return keypoints.Vector{}, fmt.Errorf("decode %s: %w", path, err)
	}

	v, err := keypoints.FromSlice(values)
	if err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrVectorLength, path, err)
	}
	return v, nil
}
