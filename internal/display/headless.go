package display

import (
	"sync/atomic"

	"github.com/ayusman/handset/internal/keypoints"
	"gocv.io/x/gocv"
)

// Headless is a display without a window. Stops come from Stop, typically
// wired to SIGINT or the tray.
type Headless struct {
	stop   atomic.Bool
	shown  atomic.Int64
	closed atomic.Bool
}

// NewHeadless creates a Headless display.
func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) ShowPriming(*gocv.Mat, string, int) {
	h.shown.Add(1)
}

func (h *Headless) ShowRecording(*gocv.Mat, keypoints.Hands, string, int, int) {
	h.shown.Add(1)
}

// StopRequested reports whether Stop has been called.
func (h *Headless) StopRequested() bool {
	return h.stop.Load()
}

// Stop requests the session to stop. Safe to call from any goroutine.
func (h *Headless) Stop() {
	h.stop.Store(true)
}

// Shown returns the number of frames handed to the display.
func (h *Headless) Shown() int {
	return int(h.shown.Load())
}

func (h *Headless) Close() error {
	h.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (h *Headless) Closed() bool {
	return h.closed.Load()
}
