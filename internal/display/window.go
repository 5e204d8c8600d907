package display

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handset/internal/keypoints"
	"gocv.io/x/gocv"
)

// DefaultStopKey ends a session when pressed in the preview window.
const DefaultStopKey = 'q'

// Window shows frames in an OpenCV HighGUI window. HighGUI calls must be
// made from the thread that created the window.
type Window struct {
	mu      sync.Mutex
	win     *gocv.Window
	stopKey int
	stop    atomic.Bool
}

// NewWindow opens a preview window titled title. A zero stopKey means
// DefaultStopKey.
func NewWindow(title string, stopKey rune) *Window {
	if stopKey == 0 {
		stopKey = DefaultStopKey
	}
	return &Window{
		win:     gocv.NewWindow(title),
		stopKey: int(stopKey),
	}
}

// ShowPriming shows frame with the countdown banner.
func (w *Window) ShowPriming(frame *gocv.Mat, label string, countdown int) {
	DrawPriming(frame, label, countdown)
	w.show(frame, 1)
}

// ShowRecording shows frame with the detected hands and the status line.
func (w *Window) ShowRecording(frame *gocv.Mat, hands keypoints.Hands, label string, sequence, frameIndex int) {
	DrawRecording(frame, hands, label, sequence, frameIndex)
	w.show(frame, 1)
}

// Wait keeps the window responsive for d, returning early when the stop
// key is pressed or ctx is done. It can stand in for the session's
// priming sleep.
func (w *Window) Wait(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 || w.stop.Load() {
			return nil
		}
		step := min(remaining, 50*time.Millisecond)
		w.pollKey(max(int(step/time.Millisecond), 1))
	}
}

// StopRequested reports whether the stop key was pressed or Stop called.
func (w *Window) StopRequested() bool {
	return w.stop.Load()
}

// Stop requests the session to stop. Safe to call from any goroutine.
func (w *Window) Stop() {
	w.stop.Store(true)
}

// Close destroys the window.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}

func (w *Window) show(frame *gocv.Mat, delay int) {
	w.mu.Lock()
	if w.win == nil || frame == nil || frame.Empty() {
		w.mu.Unlock()
		return
	}
	w.win.IMShow(*frame)
	w.mu.Unlock()

	w.pollKey(delay)
}

// pollKey pumps window events for delay milliseconds and latches the stop
// key.
func (w *Window) pollKey(delay int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.win == nil {
		return
	}
	if key := w.win.WaitKey(delay); key >= 0 && key&0xFF == w.stopKey {
		w.stop.Store(true)
	}
}
