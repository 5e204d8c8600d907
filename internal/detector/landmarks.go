// Package detector provides hand landmark detection for dataset collection.
package detector

import "errors"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the detector.
const (
	Left  = "Left"
	Right = "Right"
)

// ErrLandmarkCount is returned when a detected hand does not carry exactly
// NumLandmarks points.
var ErrLandmarkCount = errors.New("unexpected landmark count")

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// AppendXYZ appends the landmarks to dst flattened as x, y, z in landmark
// order and returns the extended slice.
func (h *HandLandmarks) AppendXYZ(dst []float64) []float64 {
	for _, p := range h.Points {
		dst = append(dst, p.X, p.Y, p.Z)
	}
	return dst
}

// IsLeft reports whether the hand was classified as a left hand.
func (h *HandLandmarks) IsLeft() bool {
	return h.Handedness == Left
}

// IsRight reports whether the hand was classified as a right hand.
func (h *HandLandmarks) IsRight() bool {
	return h.Handedness == Right
}
