// Package tray provides a system tray menu that shows the state of a
// collection session and lets the user stop it.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/handset/internal/session"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application. It implements
// session.Observer.
type Tray struct {
	onStop func()
	onQuit func()
	status string
	frames int
	done   bool
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuFrames *systray.MenuItem
	menuStop   *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{status: session.PhaseIdle.String()}
}

// OnStop sets the callback function to be called when "Stop recording" is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("handset")
	systray.SetTooltip("handset dataset recorder")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Session state")
	t.menuStatus.Disable()
	t.menuFrames = systray.AddMenuItem(FramesText(t.frames), "Frames written")
	t.menuFrames.Disable()
	systray.AddSeparator()

	t.menuStop = systray.AddMenuItem("Stop recording", "Stop after the current frame")
	if t.done {
		t.menuStop.Disable()
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop recording and quit")

	go func() {
		for {
			select {
			case <-t.menuStop.ClickedCh:
				t.handleStop()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleStop handles the stop menu item click.
func (t *Tray) handleStop() {
	t.mu.Lock()
	callback := t.onStop
	if t.menuStop != nil {
		t.menuStop.SetTitle("Stopping...")
		t.menuStop.Disable()
	}
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	stop, quit := t.onStop, t.onQuit
	t.mu.RUnlock()

	if stop != nil {
		stop()
	}
	if quit != nil {
		quit()
	}

	systray.Quit()
}

// StateChanged shows the new session state in the menu.
func (t *Tray) StateChanged(s session.State) {
	t.setStatus(StatusText(s))
}

// FrameWritten updates the frame counter.
func (t *Tray) FrameWritten(session.FrameEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frames++
	if t.menuFrames != nil {
		t.menuFrames.SetTitle(FramesText(t.frames))
	}
}

// SequenceAborted shows the aborted sequence in the menu.
func (t *Tray) SequenceAborted(e session.AbortEvent) {
	t.setStatus(fmt.Sprintf("%s #%d aborted", e.Label, e.Sequence))
}

// Finished shows the final status and disables the stop item.
func (t *Tray) Finished(r session.Result) {
	t.setStatus("Session " + string(r.Status))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	if t.menuStop != nil {
		t.menuStop.Disable()
	}
}

// Status returns the text of the status menu item.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Frames returns the number of frames counted so far.
func (t *Tray) Frames() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frames
}

func (t *Tray) setStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = text
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(text)
	}
}

// StatusText describes a session state for the menu.
func StatusText(s session.State) string {
	switch s.Phase {
	case session.PhasePriming:
		return fmt.Sprintf("Get ready: %s #%d in %d", s.Label, s.Sequence, s.Countdown)
	case session.PhaseRecording:
		return fmt.Sprintf("Recording %s #%d frame %d", s.Label, s.Sequence, s.Frame)
	default:
		return s.Phase.String()
	}
}

// FramesText is the frame counter menu title.
func FramesText(n int) string {
	return fmt.Sprintf("Frames: %d", n)
}
