// Package progress renders session progress as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/ayusman/handset/internal/session"
	"github.com/cheggaaa/pb/v3"
)

const barTemplate = `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . "%.01f%%" "?"}} {{etime . "%s elapsed"}} {{rtime . "%s remain" "%s total" "???"}}`

// Bar tracks written frames against the planned total. It implements
// session.Observer.
type Bar struct {
	session.NopObserver

	mu                sync.Mutex
	bar               *pb.ProgressBar
	framesPerSequence int
	started           bool
	finished          bool
}

// New creates a bar writing to w for a session described by cfg. Nothing
// is drawn until the session reports its first state.
func New(w io.Writer, cfg session.Config) *Bar {
	bar := pb.ProgressBarTemplate(barTemplate).New(cfg.TotalFrames())
	bar.SetWriter(w)
	bar.Set("prefix", "waiting")

	return &Bar{bar: bar, framesPerSequence: cfg.FramesPerSequence}
}

// start draws the bar on first use. Callers hold b.mu.
func (b *Bar) start() {
	if !b.started {
		b.started = true
		b.bar.Start()
	}
}

// Started reports whether the bar has been drawn.
func (b *Bar) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// StateChanged updates the bar prefix with the current label and sequence.
func (b *Bar) StateChanged(s session.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.start()
	b.bar.Set("prefix", Prefix(s))
}

// FrameWritten advances the bar by one frame.
func (b *Bar) FrameWritten(session.FrameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.finished {
		b.start()
		b.bar.Increment()
	}
}

// SequenceAborted removes the frames an aborted sequence will never write
// from the total.
func (b *Bar) SequenceAborted(e session.AbortEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if missing := b.framesPerSequence - e.FramesRecorded; missing > 0 && !b.finished {
		b.bar.SetTotal(b.bar.Total() - int64(missing))
	}
}

// Finished stops the bar.
func (b *Bar) Finished(r session.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true
	if !b.started {
		return
	}
	b.bar.Set("prefix", string(r.Status))
	b.bar.Finish()
}

// Current returns the number of frames counted so far.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bar.Current()
}

// Total returns the number of frames the bar expects.
func (b *Bar) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bar.Total()
}

// Prefix describes a session state for the bar.
func Prefix(s session.State) string {
	switch s.Phase {
	case session.PhasePriming:
		return fmt.Sprintf("%s #%d (in %d)", s.Label, s.Sequence, s.Countdown)
	case session.PhaseRecording:
		return fmt.Sprintf("%s #%d", s.Label, s.Sequence)
	default:
		return s.Phase.String()
	}
}
