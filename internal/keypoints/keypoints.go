// Package keypoints reduces detector output to the fixed-length vector
// stored for every recorded frame.
package keypoints

import (
	"fmt"

	"github.com/ayusman/handset/internal/detector"
)

const (
	// HandSize is the length of one hand's sub-vector (21 landmarks × xyz).
	HandSize = detector.NumLandmarks * 3
	// Size is the length of a full keypoint vector: left hand then right hand.
	Size = 2 * HandSize
)

// Vector is one frame's keypoints. Elements [0, HandSize) hold the left
// hand, [HandSize, Size) the right hand.
type Vector [Size]float64

// Hands is the detector output split by side. A nil side was not detected.
type Hands struct {
	Left  *detector.HandLandmarks
	Right *detector.HandLandmarks
}

// Split assigns each detected hand to its side. When the detector reports
// more than one hand for a side, the one with the highest score is kept.
// Hands with unknown handedness are ignored.
func Split(hands []detector.HandLandmarks) Hands {
	var out Hands
	for i := range hands {
		h := &hands[i]
		switch {
		case h.IsLeft():
			if out.Left == nil || h.Score > out.Left.Score {
				out.Left = h
			}
		case h.IsRight():
			if out.Right == nil || h.Score > out.Right.Score {
				out.Right = h
			}
		}
	}
	return out
}

// Present reports which sides were detected.
func (h Hands) Present() (left, right bool) {
	return h.Left != nil, h.Right != nil
}

// Vector flattens both sides into a keypoint vector, zero-filling the
// sub-vector of a side that is absent.
func (h Hands) Vector() Vector {
	var v Vector
	if h.Left != nil {
		copy(v[:HandSize], h.Left.AppendXYZ(make([]float64, 0, HandSize)))
	}
	if h.Right != nil {
		copy(v[HandSize:], h.Right.AppendXYZ(make([]float64, 0, HandSize)))
	}
	return v
}

// Extract splits hands by side and builds the frame's keypoint vector.
func Extract(hands []detector.HandLandmarks) (Vector, Hands) {
	split := Split(hands)
	return split.Vector(), split
}

// FromSlice copies a decoded vector, rejecting any length other than Size.
func FromSlice(values []float64) (Vector, error) {
	var v Vector
	if len(values) != Size {
		return v, fmt.Errorf("keypoint vector has %d values, want %d", len(values), Size)
	}
	copy(v[:], values)
	return v, nil
}
