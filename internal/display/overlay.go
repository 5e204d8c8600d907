// Package display renders the collection preview and reports when the user
// asks to stop.
package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/handset/internal/detector"
	"github.com/ayusman/handset/internal/keypoints"
	"gocv.io/x/gocv"
)

// Overlay colors.
var (
	primingColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	recordingColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	leftColor      = color.RGBA{R: 255, G: 128, B: 0, A: 0}
	rightColor     = color.RGBA{R: 0, G: 200, B: 255, A: 0}
)

// handConnections are the landmark pairs joined when drawing a hand.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC},
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// PrimingText is the countdown banner shown before a sequence.
func PrimingText(label string, countdown int) string {
	return fmt.Sprintf("Prepare for '%s'. Starting in %d...", label, countdown)
}

// RecordingText is the status line shown while a sequence is recorded.
func RecordingText(label string, sequence, frame int) string {
	return fmt.Sprintf("Gesture: %s | Seq: %d | Frame: %d", label, sequence, frame)
}

// DrawPriming writes the countdown banner onto frame.
func DrawPriming(frame *gocv.Mat, label string, countdown int) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.PutText(frame, PrimingText(label, countdown), image.Pt(20, 40),
		gocv.FontHersheySimplex, 0.8, primingColor, 2)
}

// DrawRecording writes the status line and the detected hands onto frame.
func DrawRecording(frame *gocv.Mat, hands keypoints.Hands, label string, sequence, frameIndex int) {
	if frame == nil || frame.Empty() {
		return
	}
	if hands.Left != nil {
		drawHand(frame, hands.Left, leftColor)
	}
	if hands.Right != nil {
		drawHand(frame, hands.Right, rightColor)
	}
	gocv.PutText(frame, RecordingText(label, sequence, frameIndex), image.Pt(20, 30),
		gocv.FontHersheySimplex, 0.7, recordingColor, 2)
}

// drawHand draws the landmark skeleton. Landmark coordinates are
// normalized to the frame size.
func drawHand(frame *gocv.Mat, h *detector.HandLandmarks, c color.RGBA) {
	pts := LandmarkPixels(h, frame.Cols(), frame.Rows())
	for _, conn := range handConnections {
		gocv.Line(frame, pts[conn[0]], pts[conn[1]], c, 2)
	}
	for _, p := range pts {
		gocv.Circle(frame, p, 4, c, -1)
	}
}

// LandmarkPixels converts normalized landmark coordinates to pixel
// positions in a width x height frame.
func LandmarkPixels(h *detector.HandLandmarks, width, height int) [detector.NumLandmarks]image.Point {
	var pts [detector.NumLandmarks]image.Point
	for i, p := range h.Points {
		pts[i] = image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
	}
	return pts
}
