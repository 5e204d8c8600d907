package session

import (
	"fmt"
	"time"

	"github.com/ayusman/handset/internal/keypoints"
	"github.com/ayusman/handset/internal/store"
	"gocv.io/x/gocv"
)

// Phase is the controller's position in the collection state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePriming
	PhaseRecording
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePriming:
		return "priming"
	case PhaseRecording:
		return "recording"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the controller. Countdown is set while priming,
// Frame while recording.
type State struct {
	Phase     Phase
	Label     string
	Sequence  int
	Countdown int
	Frame     int
}

// Status is how a session ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Result summarizes a finished session.
type Result struct {
	SessionID          string
	Status             Status
	FramesWritten      int
	SequencesCompleted int
	SequencesAborted   int
	StartedAt          time.Time
	FinishedAt         time.Time
}

// FrameEvent describes a written frame record.
type FrameEvent struct {
	Label     string
	Sequence  int
	Frame     int
	Path      string
	LeftHand  bool
	RightHand bool
}

// AbortEvent describes a sequence cut short by a frame read failure.
type AbortEvent struct {
	Label          string
	Sequence       int
	FramesRecorded int
	Err            error
}

// Display is the UI collaborator. It renders the priming countdown and the
// recorded frames and reports whether the user asked to stop.
type Display interface {
	ShowPriming(frame *gocv.Mat, label string, countdown int)
	ShowRecording(frame *gocv.Mat, hands keypoints.Hands, label string, sequence, frameIndex int)
	StopRequested() bool
	Close() error
}

// Writer persists keypoint vectors. *dataset.Layout implements it.
type Writer interface {
	EnsureSequenceDir(label string, sequence int) (string, error)
	FramePath(label string, sequence, frame int) string
	WriteKeypoints(path string, v keypoints.Vector) error
}

// Manifest records sessions and written frames. *store.Store implements it.
type Manifest interface {
	BeginSession(sess *store.Session) error
	RecordFrame(rec *store.FrameRecord) error
	RecordAbort(a *store.SequenceAbort) error
	FinishSession(id string, status store.SessionStatus, framesWritten int, errMsg string) error
}

// Observer is notified of progress. Calls are made from the goroutine
// running the session.
type Observer interface {
	StateChanged(s State)
	FrameWritten(e FrameEvent)
	SequenceAborted(e AbortEvent)
	Finished(r Result)
}

// NopObserver implements Observer with no-ops; embed it to handle only
// some notifications.
type NopObserver struct{}

func (NopObserver) StateChanged(State)         {}
func (NopObserver) FrameWritten(FrameEvent)    {}
func (NopObserver) SequenceAborted(AbortEvent) {}
func (NopObserver) Finished(Result)            {}

type nopDisplay struct{}

func (nopDisplay) ShowPriming(*gocv.Mat, string, int)                         {}
func (nopDisplay) ShowRecording(*gocv.Mat, keypoints.Hands, string, int, int) {}
func (nopDisplay) StopRequested() bool                                        { return false }
func (nopDisplay) Close() error                                               { return nil }
